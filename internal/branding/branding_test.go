package branding

import "testing"

func TestDefaults(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"CLIName", CLIName(), "craftapp"},
		{"HomeDir", HomeDir(), ".craftapp"},
		{"EnvPrefix", EnvPrefix(), "CRAFTAPP"},
		{"ManifestFile", ManifestFile(), "craft.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("log-level"); got != "CRAFTAPP_LOG_LEVEL" {
		t.Errorf("EnvVar = %q, want %q", got, "CRAFTAPP_LOG_LEVEL")
	}
}
