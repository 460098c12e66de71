//go:build linux

package stack

import (
	"net"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"modemconn/internal/lasterr"
)

func newTestPOSIX() (*POSIX, *lasterr.Register) {
	reg := &lasterr.Register{}
	p := NewPOSIX()
	p.Register = reg
	return p, reg
}

func TestPOSIX_GetAddrInfoNumeric(t *testing.T) {
	p, _ := newTestPOSIX()
	res, err := p.GetAddrInfo("127.0.0.1", "", &AddrInfo{Family: AFInet, SockType: SockStream})
	if err != nil {
		t.Fatalf("GetAddrInfo: %v", err)
	}
	defer p.FreeAddrInfo(res)

	if res.Addr == nil || res.Addr.Addr != [4]byte{127, 0, 0, 1} {
		t.Fatalf("unexpected record %+v", res)
	}
	if res.Next != nil {
		t.Error("numeric lookup should yield one record")
	}
	if res.AddrLen != SizeofSockaddrIn {
		t.Errorf("AddrLen = %d", res.AddrLen)
	}
}

func TestPOSIX_GetAddrInfoBadHints(t *testing.T) {
	p, reg := newTestPOSIX()
	tests := []struct {
		name  string
		hints *AddrInfo
		want  EAIError
	}{
		{"flags", &AddrInfo{Flags: 1}, EAIBadFlags},
		{"family", &AddrInfo{Family: unix.AF_INET6}, EAIFamily},
		{"socktype", &AddrInfo{SockType: unix.SOCK_DGRAM}, EAISockType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.GetAddrInfo("127.0.0.1", "", tt.hints)
			if err != tt.want {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if reg.Load() != int32(tt.want) {
				t.Errorf("register = %d, want %d", reg.Load(), tt.want)
			}
		})
	}
}

func TestPOSIX_FreeAddrInfoUnlinks(t *testing.T) {
	p, _ := newTestPOSIX()
	second := &AddrInfo{}
	head := &AddrInfo{Next: second, Addr: NewSockaddrIn([4]byte{1, 2, 3, 4}, 1)}
	p.FreeAddrInfo(head)
	if head.Next != nil || head.Addr != nil {
		t.Error("FreeAddrInfo should unlink records")
	}
}

// TestPOSIX_NonblockingConnect walks the same sequence the connect layer
// uses against a loopback listener.
func TestPOSIX_NonblockingConnect(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := uint16(ln.Addr().(*net.TCPAddr).Port)

	p, _ := newTestPOSIX()
	fd, err := p.Socket(AFInet, SockStream, ProtoTCP)
	if err != nil {
		t.Fatalf("Socket: %v", err)
	}
	defer p.Close(fd) //nolint:errcheck

	flags, err := p.GetFlags(fd)
	if err != nil {
		t.Fatalf("GetFlags: %v", err)
	}
	if err := p.SetFlags(fd, flags|FlagNonblock); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}

	err = p.Connect(fd, NewSockaddrIn([4]byte{127, 0, 0, 1}, port))
	if err != nil && err != unix.EINPROGRESS {
		t.Fatalf("Connect: %v", err)
	}

	var ws FdSet
	ws.Set(fd)
	n, err := p.Select(fd+1, nil, &ws, nil, 2*time.Second)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if n != 1 || !ws.IsSet(fd) {
		t.Fatalf("Select = %d, want fd writable", n)
	}

	soErr, err := p.SocketError(fd)
	if err != nil {
		t.Fatalf("SocketError: %v", err)
	}
	if soErr != 0 {
		t.Errorf("SO_ERROR = %d, want 0", soErr)
	}

	if err := p.SetFlags(fd, flags); err != nil {
		t.Fatalf("restore flags: %v", err)
	}
	if got, _ := p.GetFlags(fd); got != flags {
		t.Errorf("flags = %#x, want %#x", got, flags)
	}
}

func TestPOSIX_MirrorsFailures(t *testing.T) {
	p, reg := newTestPOSIX()
	if _, err := p.GetFlags(-1); err == nil {
		t.Fatal("expected EBADF")
	}
	if reg.Load() != int32(unix.EBADF) {
		t.Errorf("register = %d, want EBADF", reg.Load())
	}
}
