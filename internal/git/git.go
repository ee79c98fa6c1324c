package git

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// VaultStatus contains git status information for a vault file
type VaultStatus struct {
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// Exposed reports whether the vault could end up in a commit
func (s *VaultStatus) Exposed() bool {
	return s.IsRepo && (s.Tracked || !s.Ignored)
}

// Available reports whether a git binary is on PATH
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckVault reports the git status of the vault file at vaultPath.
// A missing vault directory is reported as not being in a repository.
func CheckVault(vaultPath string) *VaultStatus {
	status := &VaultStatus{}

	dir, name := filepath.Split(vaultPath)
	if dir == "" {
		dir = "."
	}

	if !IsGitRepo(dir) {
		return status
	}
	status.IsRepo = true
	status.Tracked = IsTracked(dir, name)
	status.Ignored = IsIgnored(dir, name)

	return status
}
