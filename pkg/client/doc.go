// Package client provides a typed gRPC client for probing a running pastebot
// process through the standard health protocol. It wraps connection
// management and timeouts so container health checks and operators can ask
// whether the bot is connected without speaking Discord.
package client
