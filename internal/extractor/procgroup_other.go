//go:build !unix

package extractor

import "os/exec"

// configureProcessGroup keeps exec's default cancel behaviour (kill the child only).
func configureProcessGroup(cmd *exec.Cmd) {}
