package media

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool names one required external binary and the command configured for
// it (a bare name resolved on PATH, or a direct path).
type Tool struct {
	Name    string
	Command string
}

// CheckTools verifies that every required binary resolves before any
// decoding work starts, so a missing install fails fast instead of midway
// through a queue.
func CheckTools(tools ...Tool) error {
	for _, tool := range tools {
		command := strings.TrimSpace(tool.Command)
		if command == "" {
			return fmt.Errorf("%s: no binary configured", tool.Name)
		}
		if _, err := exec.LookPath(command); err != nil {
			return fmt.Errorf("%s: %w", tool.Name, err)
		}
	}
	return nil
}
