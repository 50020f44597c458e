package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "aulavoz.pid"
const ProtoVer = "0.2"

// EnvRuntimeDir overrides the directory holding the socket and pid file.
const EnvRuntimeDir = "AULAVOZ_RUNTIME_DIR"

// Command bytes understood by the daemon.
const (
	CmdToggle     byte = 't'
	CmdStop       byte = 'x'
	CmdClear      byte = 'c'
	CmdStatus     byte = 's'
	CmdVersion    byte = 'v'
	CmdQuit       byte = 'q'
	CmdTranscript byte = 'l'
)

// ErrDaemonReply is wrapped by errors the daemon answered with.
var ErrDaemonReply = errors.New("daemon error")

const dialTimeout = 2 * time.Second

// ~/.cache/aulavoz
func Dir() (string, error) {
	if d := os.Getenv(EnvRuntimeDir); d != "" {
		return d, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aulavoz"), nil
}

// ~/.cache/aulavoz/control.sock
func SockPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

// ~/.cache/aulavoz/aulavoz.pid
func PidPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

func Listen() (net.Listener, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(sp), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(sp) // stale socket from last run
	return net.Listen("unix", sp)
}

func Dial() (net.Conn, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	return net.DialTimeout("unix", sp, dialTimeout)
}

// SendCommand writes cmd and returns the single reply line, newline included.
func SendCommand(cmd byte) (string, error) {
	c, err := Dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	_, err = c.Write([]byte{cmd, '\n'})
	if err != nil {
		return "", err
	}

	resp, err := bufio.NewReader(c).ReadString('\n')
	return resp, err
}

// Request sends cmd and splits the reply into its kind ("OK", "STATUS",
// "TRANSCRIPT") and body. ERR replies become errors.
func Request(cmd byte) (kind, body string, err error) {
	resp, err := SendCommand(cmd)
	if err != nil {
		return "", "", err
	}
	return ParseReply(resp)
}

func ParseReply(resp string) (kind, body string, err error) {
	resp = strings.TrimRight(resp, "\n")
	kind, body, _ = strings.Cut(resp, " ")
	if kind == "" {
		return "", "", fmt.Errorf("%w: empty reply", ErrDaemonReply)
	}
	if kind == "ERR" {
		return kind, body, fmt.Errorf("%w: %s", ErrDaemonReply, body)
	}
	return kind, body, nil
}

// Fields parses "key=value" pairs from a STATUS body.
func Fields(body string) map[string]string {
	out := make(map[string]string)
	for _, f := range strings.Fields(body) {
		if k, v, ok := strings.Cut(f, "="); ok {
			out[k] = v
		}
	}
	return out
}

func CheckExistingDaemon() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}

	pidData, err := os.ReadFile(pidPath)
	if os.IsNotExist(err) {
		return nil // no existing daemon
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return nil // invalid pid file, assume stale
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}

	// signal 0 only checks that the process exists
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func CreatePidFile() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pidPath), 0o700); err != nil {
		return err
	}

	pid := os.Getpid()
	return os.WriteFile(pidPath, []byte(strconv.Itoa(pid)), 0o600)
}

func RemovePidFile() error {
	pidPath, err := PidPath()
	if err != nil {
		return err
	}
	return os.Remove(pidPath)
}
