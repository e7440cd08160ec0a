package attachments

import "fmt"

const (
	bytesPerKilobyte = 1024
	bytesPerMegabyte = bytesPerKilobyte * 1024
	bytesPerGigabyte = bytesPerMegabyte * 1024
)

// HumanSize renders a byte count using binary thresholds.
func HumanSize(byteCount int) string {
	switch {
	case byteCount >= bytesPerGigabyte:
		return fmt.Sprintf("%.2f GB", float64(byteCount)/bytesPerGigabyte)
	case byteCount >= bytesPerMegabyte:
		return fmt.Sprintf("%.2f MB", float64(byteCount)/bytesPerMegabyte)
	case byteCount >= bytesPerKilobyte:
		return fmt.Sprintf("%.2f KB", float64(byteCount)/bytesPerKilobyte)
	default:
		return fmt.Sprintf("%d bytes", byteCount)
	}
}
