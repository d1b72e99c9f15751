package udpclient

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

var ErrTimeout = errors.New("udpclient: timed out")
var ErrDisconnected = errors.New("udpclient: disconnected")

type UDPClient struct {
	name string

	c *net.UDPConn

	lock        sync.Mutex
	isConnected bool
	read        chan []byte
	write       chan []byte

	addr *net.UDPAddr
}

func NewUDPClient(name string) *UDPClient {
	return MakeUDPClient(name, &UDPClient{})
}

func MakeUDPClient(name string, c *UDPClient) *UDPClient {
	c.name = name
	c.read = make(chan []byte, 64)
	c.write = make(chan []byte, 64)
	return c
}

func (c *UDPClient) Name() string          { return c.name }
func (c *UDPClient) Addr() *net.UDPAddr    { return c.addr }
func (c *UDPClient) Write() chan<- []byte { return c.write }
func (c *UDPClient) Read() <-chan []byte  { return c.read }

func (c *UDPClient) IsConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.isConnected
}

func (c *UDPClient) Connect(addr *net.UDPAddr) (err error) {
	log.Printf("%s: connect to server '%s'\n", c.name, addr)

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.isConnected {
		return fmt.Errorf("%s: already connected", c.name)
	}

	c.addr = addr
	c.c, err = net.DialUDP("udp", nil, addr)
	if err != nil {
		return
	}

	// drop anything left over from a previous connection:
	for more := true; more; {
		select {
		case <-c.read:
		case <-c.write:
		default:
			more = false
		}
	}

	c.isConnected = true
	log.Printf("%s: connected to server '%s'\n", c.name, addr)

	go c.readLoop(c.c)
	go c.writeLoop(c.c)

	return
}

func (c *UDPClient) Disconnect() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.isConnected {
		return
	}
	log.Printf("%s: disconnect from server '%s'\n", c.name, c.addr)

	c.isConnected = false
	err := c.c.SetReadDeadline(time.Now())
	if err != nil {
		log.Printf("%s: setreaddeadline: %v\n", c.name, err)
	}

	// signal a disconnect took place:
	select {
	case c.write <- nil:
	default:
	}

	// close the underlying connection:
	err = c.c.Close()
	if err != nil {
		log.Printf("%s: close: %v\n", c.name, err)
	}

	log.Printf("%s: disconnected from server '%s'\n", c.name, c.addr)
}

// WriteTimeout queues a datagram for sending, failing if the queue stays full for d.
func (c *UDPClient) WriteTimeout(p []byte, d time.Duration) error {
	if !c.IsConnected() {
		return ErrDisconnected
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case c.write <- p:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

// ReadTimeout waits up to d for the next received datagram.
func (c *UDPClient) ReadTimeout(d time.Duration) ([]byte, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case p := <-c.read:
		if p == nil {
			return nil, ErrDisconnected
		}
		return p, nil
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// must run in a goroutine
func (c *UDPClient) readLoop(conn *net.UDPConn) {
	defer c.Disconnect()

	// we only need a single receive buffer:
	b := make([]byte, 65536)

	for {
		n, _, err := conn.ReadFromUDP(b)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && !isTimeout(err) {
				log.Printf("%s: read: %v\n", c.name, err)
			}
			return
		}

		// copy the envelope:
		envelope := make([]byte, n)
		copy(envelope, b[:n])

		select {
		case c.read <- envelope:
		default:
			log.Printf("%s: read queue full; dropping datagram\n", c.name)
		}
	}
}

// must run in a goroutine
func (c *UDPClient) writeLoop(conn *net.UDPConn) {
	defer c.Disconnect()

	for w := range c.write {
		if w == nil {
			return
		}

		_, err := conn.Write(w)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("%s: write: %v\n", c.name, err)
			}
			return
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
