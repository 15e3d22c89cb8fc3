//go:build unix

package store

import (
	"os"
	"syscall"
)

// copyOwner gives path the uid/gid recorded in info. Failing to chown as a
// non-root user is ignored when the owner already matches.
func copyOwner(path string, info os.FileInfo) error {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if err := os.Lchown(path, int(st.Uid), int(st.Gid)); err != nil {
		if os.Geteuid() != 0 && int(st.Uid) == os.Geteuid() && int(st.Gid) == os.Getegid() {
			return nil
		}
		return err
	}
	return nil
}
