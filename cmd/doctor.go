package cmd

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/zhubert/ghsync/internal/errors"
)

// prerequisite is a CLI tool ghsync shells out to.
type prerequisite struct {
	name    string
	purpose string
}

func prerequisites() []prerequisite {
	return []prerequisite{
		{name: "git", purpose: "branch, remote, and commit inspection"},
		{name: "gh", purpose: "pull request and CI check lookups"},
	}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that required CLI tools are installed",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	var missing []string
	for _, p := range prerequisites() {
		path, err := exec.LookPath(p.name)
		if err != nil {
			missing = append(missing, p.name)
			fmt.Printf("%s %s  %s\n", failureStyle.Render("✗"), labelStyle.Render(p.name), dimStyle.Render("not found, needed for "+p.purpose))
			continue
		}
		fmt.Printf("%s %s  %s\n", successStyle.Render("✓"), labelStyle.Render(p.name), dimStyle.Render(path))
	}
	if len(missing) > 0 {
		return apperrors.CLINotFound(strings.Join(missing, ", "))
	}
	fmt.Println("All prerequisites satisfied.")
	return nil
}
