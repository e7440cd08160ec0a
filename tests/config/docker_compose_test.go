package configtest

import (
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type composeDocument struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Profiles    []string            `yaml:"profiles"`
	Build       *composeBuildSpec   `yaml:"build"`
	Image       string              `yaml:"image"`
	Command     []string            `yaml:"command"`
	Healthcheck *composeHealthcheck `yaml:"healthcheck"`
}

type composeBuildSpec struct {
	Context string `yaml:"context"`
}

type composeHealthcheck struct {
	Test []string `yaml:"test"`
}

func TestComposeProfilesProvideLocalAndImageVariants(t *testing.T) {
	t.Helper()

	document := readComposeDocument(t)

	localService, localExists := document.Services["pastebot-dev"]
	if !localExists {
		t.Fatalf("compose file missing pastebot-dev service")
	}

	assertProfileContains(t, localService.Profiles, "dev", "pastebot-dev")
	if localService.Build == nil || localService.Build.Context == "" {
		t.Fatalf("pastebot-dev should define a build context for local development")
	}
	if localService.Image != "" {
		t.Fatalf("pastebot-dev should not specify an image because it builds locally")
	}

	imageService, imageExists := document.Services["pastebot"]
	if !imageExists {
		t.Fatalf("compose file missing pastebot service for docker profile")
	}

	assertProfileContains(t, imageService.Profiles, "docker", "pastebot")
	if imageService.Image == "" || !strings.HasPrefix(imageService.Image, "ghcr.io/") {
		t.Fatalf("pastebot docker profile should pull image from ghcr.io, got %q", imageService.Image)
	}
	if imageService.Build != nil {
		t.Fatalf("pastebot docker profile should not include build configuration")
	}
}

func TestComposeServicesRunTheBotWithHealthcheck(t *testing.T) {
	t.Helper()

	document := readComposeDocument(t)
	for serviceName, service := range document.Services {
		if !slices.Equal(service.Command, []string{"serve"}) {
			t.Fatalf("%s should run the serve command, got %v", serviceName, service.Command)
		}
		if service.Healthcheck == nil || !slices.Contains(service.Healthcheck.Test, "healthcheck") {
			t.Fatalf("%s should check readiness through the healthcheck command", serviceName)
		}
		if !slices.Contains(service.Healthcheck.Test, "--wait") {
			t.Fatalf("%s healthcheck should wait for startup readiness, got %v", serviceName, service.Healthcheck.Test)
		}
	}
}

func readComposeDocument(t *testing.T) composeDocument {
	t.Helper()

	var document composeDocument
	if unmarshalErr := yaml.Unmarshal(readRepoFile(t, "docker-compose.yaml"), &document); unmarshalErr != nil {
		t.Fatalf("failed to parse docker-compose.yaml: %v", unmarshalErr)
	}
	return document
}

func assertProfileContains(t *testing.T, profiles []string, expectedProfile string, serviceName string) {
	t.Helper()

	for _, profile := range profiles {
		if profile == expectedProfile {
			return
		}
	}

	t.Fatalf("%s service is missing %q profile tag", serviceName, expectedProfile)
}
