//go:build linux

package mthread

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// maxOSNameLen is TASK_COMM_LEN without the trailing NUL.
const maxOSNameLen = 15

func gettid() int {
	return unix.Gettid()
}

// mainThreadID is the kernel id of the process's initial thread, which on
// Linux equals the process id.
func mainThreadID() int {
	return unix.Getpid()
}

// setOSThreadName names the calling OS thread as seen by ps, top and
// /proc/<pid>/task/<tid>/comm. Names longer than the kernel limit are
// truncated.
func setOSThreadName(name string) error {
	if len(name) > maxOSNameLen {
		name = name[:maxOSNameLen]
	}
	p, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0)
}

func osThreadName() (string, error) {
	var buf [maxOSNameLen + 1]byte
	if err := unix.Prctl(unix.PR_GET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(buf[:]), nil
}
