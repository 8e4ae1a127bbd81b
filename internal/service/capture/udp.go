package capture

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"drowsiness/internal/logger"
)

const (
	udpPacketSize = 2048
	// UDPIdleTimeout ends the stream when the camera stops sending.
	UDPIdleTimeout = 10 * time.Second
)

var (
	jpegHeader = []byte{0xFF, 0xD8}
	jpegFooter = []byte{0xFF, 0xD9}
)

// frameAssembler rebuilds JPEG frames from packets: a packet starting with
// the JPEG header starts a new frame, one ending with the footer completes it.
type frameAssembler struct {
	buf bytes.Buffer
}

func (a *frameAssembler) push(packet []byte) ([]byte, bool) {
	if bytes.HasPrefix(packet, jpegHeader) {
		a.buf.Reset()
	}
	a.buf.Write(packet)

	if !bytes.HasSuffix(packet, jpegFooter) {
		return nil, false
	}

	frame := make([]byte, a.buf.Len())
	copy(frame, a.buf.Bytes())
	a.buf.Reset()

	if !bytes.HasPrefix(frame, jpegHeader) {
		return nil, false
	}
	return frame, true
}

type udpFrame struct {
	data       []byte
	receivedAt time.Time
}

// UDPSource receives JPEG frames pushed over UDP by a network camera. The
// first sender is locked on; packets from other addresses are ignored.
type UDPSource struct {
	conn        *net.UDPConn
	frames      chan udpFrame
	idleTimeout time.Duration
	idle        *time.Timer
	logger      *logger.Logger

	img   gocv.Mat
	index int

	closeOnce sync.Once
}

// IsUDPEndpoint reports whether endpoint names a udp:// listener.
func IsUDPEndpoint(endpoint string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "udp://")
}

// OpenUDPSource listens on the address of a udp://host:port endpoint.
func OpenUDPSource(endpoint string, idleTimeout time.Duration, logger *logger.Logger) (*UDPSource, error) {
	address := strings.TrimSpace(endpoint)[len("udp://"):]

	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address %s: %w", address, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP %s: %w", address, err)
	}

	s := &UDPSource{
		conn:        conn,
		frames:      make(chan udpFrame, 1),
		idleTimeout: idleTimeout,
		logger:      logger,
		img:         gocv.NewMat(),
	}
	if idleTimeout > 0 {
		s.idle = time.NewTimer(idleTimeout)
	}
	go s.receive()

	logger.Info("📷 UDP camera source listening on %s", conn.LocalAddr())
	return s, nil
}

func (s *UDPSource) receive() {
	defer close(s.frames)

	packet := make([]byte, udpPacketSize)
	var assembler frameAssembler
	var sender string

	for {
		n, remote, err := s.conn.ReadFromUDP(packet)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("Error reading UDP packet: %v", err)
			}
			return
		}

		ip := remote.IP.String()
		if sender == "" {
			sender = ip
			s.logger.Info("UDP camera %s connected", sender)
		} else if ip != sender {
			continue
		}

		data, ok := assembler.push(packet[:n])
		if !ok {
			continue
		}

		frame := udpFrame{data: data, receivedAt: time.Now()}
		select {
		case s.frames <- frame:
		default:
			// Pętla nie nadąża: zostaje najnowsza klatka
			select {
			case <-s.frames:
			default:
			}
			s.frames <- frame
		}
	}
}

// Next waits for the next complete frame. A silent camera ends the stream after the idle timeout.
func (s *UDPSource) Next() (Frame, error) {
	for {
		var frame udpFrame
		var ok bool

		if s.idle != nil {
			s.resetIdle()
			select {
			case frame, ok = <-s.frames:
			case <-s.idle.C:
				s.logger.Warning("No UDP frame for %s, ending stream", s.idleTimeout)
				return Frame{}, ErrEndOfStream
			}
		} else {
			frame, ok = <-s.frames
		}

		if !ok {
			return Frame{}, ErrEndOfStream
		}

		img, err := gocv.IMDecode(frame.data, gocv.IMReadColor)
		if err != nil {
			s.logger.Warning("Dropping undecodable UDP frame (%d bytes): %v", len(frame.data), err)
			continue
		}
		if img.Empty() {
			img.Close()
			s.logger.Warning("Dropping empty UDP frame (%d bytes)", len(frame.data))
			continue
		}

		s.img.Close()
		s.img = img
		s.index++

		return Frame{
			Index:     s.index,
			Timestamp: frame.receivedAt,
			Image:     s.img,
		}, nil
	}
}

// resetIdle restarts the idle timer, draining a tick that fired while no one was waiting.
func (s *UDPSource) resetIdle() {
	if !s.idle.Stop() {
		select {
		case <-s.idle.C:
		default:
		}
	}
	s.idle.Reset(s.idleTimeout)
}

// Close stops the listener and releases the last frame.
func (s *UDPSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.idle != nil {
			s.idle.Stop()
		}
		err = errors.Join(s.conn.Close(), s.img.Close())
	})
	return err
}

// Open picks the source implementation for FRAME_SOURCE.
func Open(endpoint string, logger *logger.Logger) (Source, error) {
	if IsUDPEndpoint(endpoint) {
		source, err := OpenUDPSource(endpoint, UDPIdleTimeout, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	}

	source, err := OpenVideoSource(endpoint)
	if err != nil {
		return nil, err
	}
	return source, nil
}
