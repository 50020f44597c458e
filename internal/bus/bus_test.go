package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// useTempRuntimeDir points the bus at a short temp dir; unix socket paths
// are length limited.
func useTempRuntimeDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "av")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv(EnvRuntimeDir, dir)
	return dir
}

func TestPathFunctions(t *testing.T) {
	dir := useTempRuntimeDir(t)

	sp, err := SockPath()
	if err != nil {
		t.Fatalf("SockPath failed: %v", err)
	}
	if sp != filepath.Join(dir, SockName) {
		t.Errorf("SockPath = %s", sp)
	}

	pp, err := PidPath()
	if err != nil {
		t.Fatalf("PidPath failed: %v", err)
	}
	if pp != filepath.Join(dir, PidName) {
		t.Errorf("PidPath = %s", pp)
	}
}

func TestPathFunctions_DefaultDir(t *testing.T) {
	t.Setenv(EnvRuntimeDir, "")
	path, err := SockPath()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Error("SockPath should return absolute path")
	}
	if filepath.Base(filepath.Dir(path)) != "aulavoz" {
		t.Errorf("SockPath should live under aulavoz/, got %s", path)
	}
}

func TestPidFile(t *testing.T) {
	useTempRuntimeDir(t)
	pidPath, _ := PidPath()

	t.Run("no pid file", func(t *testing.T) {
		if err := CheckExistingDaemon(); err != nil {
			t.Errorf("CheckExistingDaemon should succeed when no daemon running: %v", err)
		}
	})

	t.Run("create and remove", func(t *testing.T) {
		if err := CreatePidFile(); err != nil {
			t.Fatalf("CreatePidFile failed: %v", err)
		}
		data, err := os.ReadFile(pidPath)
		if err != nil {
			t.Fatalf("failed to read PID file: %v", err)
		}
		if string(data) != strconv.Itoa(os.Getpid()) {
			t.Errorf("PID file contains %q", data)
		}
		if err := RemovePidFile(); err != nil {
			t.Fatalf("RemovePidFile failed: %v", err)
		}
		if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
			t.Error("PID file should not exist after RemovePidFile")
		}
	})

	t.Run("live process", func(t *testing.T) {
		if err := CreatePidFile(); err != nil {
			t.Fatalf("CreatePidFile failed: %v", err)
		}
		defer RemovePidFile()

		if err := CheckExistingDaemon(); err == nil {
			t.Error("CheckExistingDaemon should fail while the pid is alive")
		}
	})

	t.Run("stale and invalid pid", func(t *testing.T) {
		for _, content := range []string{"999999", "invalid"} {
			if err := os.WriteFile(pidPath, []byte(content), 0o600); err != nil {
				t.Fatalf("write pid: %v", err)
			}
			if err := CheckExistingDaemon(); err != nil {
				t.Errorf("CheckExistingDaemon(%q) should succeed: %v", content, err)
			}
		}
	})
}

func serveReplies(t *testing.T, replies map[byte]string) {
	t.Helper()
	ln, err := Listen()
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				line, err := bufio.NewReader(c).ReadString('\n')
				if err != nil || len(line) == 0 {
					return
				}
				if reply, ok := replies[line[0]]; ok {
					fmt.Fprint(c, reply)
					return
				}
				fmt.Fprintf(c, "ERR unknown=%q\n", line[0])
			}(conn)
		}
	}()
}

func TestSendCommand(t *testing.T) {
	useTempRuntimeDir(t)
	serveReplies(t, map[byte]string{
		CmdToggle:  "STATUS status=listening\n",
		CmdStatus:  "STATUS status=idle segments=3\n",
		CmdVersion: fmt.Sprintf("STATUS proto=%s\n", ProtoVer),
		CmdQuit:    "OK quitting\n",
	})

	tests := []struct {
		cmd      byte
		expected string
	}{
		{CmdToggle, "STATUS status=listening\n"},
		{CmdStatus, "STATUS status=idle segments=3\n"},
		{CmdVersion, fmt.Sprintf("STATUS proto=%s\n", ProtoVer)},
		{CmdQuit, "OK quitting\n"},
		{'z', "ERR unknown='z'\n"},
	}
	for _, tt := range tests {
		resp, err := SendCommand(tt.cmd)
		if err != nil {
			t.Errorf("command %c: %v", tt.cmd, err)
			continue
		}
		if resp != tt.expected {
			t.Errorf("command %c: got %q, expected %q", tt.cmd, resp, tt.expected)
		}
	}
}

func TestRequest(t *testing.T) {
	useTempRuntimeDir(t)
	serveReplies(t, map[byte]string{
		CmdStatus: "STATUS status=listening speaker=PROFESSOR\n",
	})

	kind, body, err := Request(CmdStatus)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if kind != "STATUS" {
		t.Errorf("kind = %q", kind)
	}
	f := Fields(body)
	if f["status"] != "listening" || f["speaker"] != "PROFESSOR" {
		t.Errorf("fields = %v", f)
	}

	_, _, err = Request('z')
	if !errors.Is(err, ErrDaemonReply) {
		t.Errorf("expected ErrDaemonReply, got %v", err)
	}
}

func TestDialWithoutListener(t *testing.T) {
	useTempRuntimeDir(t)
	if _, err := SendCommand(CmdStatus); err == nil {
		t.Error("SendCommand should fail when no daemon is listening")
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		in      string
		kind    string
		body    string
		wantErr bool
	}{
		{"OK cleared\n", "OK", "cleared", false},
		{"TRANSCRIPT []\n", "TRANSCRIPT", "[]", false},
		{"ERR unavailable\n", "ERR", "unavailable", true},
		{"\n", "", "", true},
	}
	for _, tt := range tests {
		kind, body, err := ParseReply(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseReply(%q) err = %v", tt.in, err)
		}
		if kind != tt.kind || body != tt.body {
			t.Errorf("ParseReply(%q) = %q, %q", tt.in, kind, body)
		}
	}
}
