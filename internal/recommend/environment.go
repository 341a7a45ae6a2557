package recommend

import (
	"os"
	"runtime"

	"emlscout/internal/sysinfo"
)

// Provider names a credentialed external service the pipeline can use
type Provider string

const (
	ProviderMistral   Provider = "mistral"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ProviderOCR is the provider PDF text extraction depends on
const ProviderOCR = ProviderMistral

// CredentialEnv maps each provider to the environment variable holding its key
var CredentialEnv = map[Provider]string{
	ProviderMistral:   "MISTRAL_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Environment is the read-only capability snapshot the engine scores against
type Environment struct {
	Credentials     map[Provider]bool
	CPUCores        int
	AvailableMemory uint64
}

// HasCredential reports whether a key for p was present when the snapshot was taken
func (e Environment) HasCredential(p Provider) bool {
	return e.Credentials[p]
}

// AvailableMemoryMB returns available memory in MiB
func (e Environment) AvailableMemoryMB() int {
	return int(e.AvailableMemory / (1024 * 1024))
}

// ProbeEnvironment samples credentials, CPU cores and available memory once
func ProbeEnvironment() Environment {
	return ProbeEnvironmentWith(os.LookupEnv)
}

// ProbeEnvironmentWith is ProbeEnvironment with an injectable variable lookup
func ProbeEnvironmentWith(lookup func(string) (string, bool)) Environment {
	creds := make(map[Provider]bool, len(CredentialEnv))
	for p, name := range CredentialEnv {
		v, ok := lookup(name)
		creds[p] = ok && v != ""
	}
	return Environment{
		Credentials:     creds,
		CPUCores:        runtime.NumCPU(),
		AvailableMemory: sysinfo.AvailableMemory(),
	}
}
