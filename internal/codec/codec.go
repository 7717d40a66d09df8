// Package codec serializes command sequences to the recorded-session file
// format.
//
// A stream is the 4-byte magic "ORCL", one version byte, a uvarint record
// count and then the records. Each record is one tag byte (the command
// shape), the kind as a uvarint, the simulated time as a big-endian IEEE 754
// float64, and the shape payload:
//
//	marker      (none)
//	boolean     state byte
//	indexed     zigzag varint index, state byte
//	continuous  direction byte, has-target byte, [float64 target]
//	paused      float64 wall-clock duration
//	camera      uvarint length, UTF-8 view name
//	save        uvarint length, UTF-8 file stem
//
// Receivers are never part of the stream.
package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/openrails/openrails-sub024/internal/command"
)

// Magic opens every encoded stream.
const Magic = "ORCL"

// Version is the format version written by Encode.
const Version byte = 1

// MaxLabelLen bounds camera view and save stem lengths.
const MaxLabelLen = command.MaxLabelLen

// minRecordLen is tag + one-byte kind + time.
const minRecordLen = 1 + 1 + 8

// ErrCorruptLog indicates bytes that do not decode to a valid command
// sequence. Decode never returns a partial sequence alongside it.
var ErrCorruptLog = errors.New("corrupt command log")

// Encode serializes cmds in order.
func Encode(cmds []command.Command) ([]byte, error) {
	buf := make([]byte, 0, 16+len(cmds)*20)
	buf = append(buf, Magic...)
	buf = append(buf, Version)
	buf = binary.AppendUvarint(buf, uint64(len(cmds)))
	for i, c := range cmds {
		var err error
		buf, err = AppendRecord(buf, c)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return buf, nil
}

// AppendRecord appends the encoding of a single command to dst.
func AppendRecord(dst []byte, c command.Command) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return dst, err
	}

	dst = append(dst, byte(c.Shape()))
	dst = binary.AppendUvarint(dst, uint64(c.Kind()))
	dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(c.Time()))

	switch c.Shape() {
	case command.ShapeMarker:
	case command.ShapeBoolean:
		dst = appendBool(dst, c.ToState())
	case command.ShapeIndexed:
		dst = binary.AppendVarint(dst, int64(c.Index()))
		dst = appendBool(dst, c.ToState())
	case command.ShapeContinuous:
		dst = appendBool(dst, c.Increase())
		target, ok := c.Target()
		dst = appendBool(dst, ok)
		if ok {
			dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(target))
		}
	case command.ShapePaused:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(c.Duration()))
	case command.ShapeCamera, command.ShapeSave:
		dst = binary.AppendUvarint(dst, uint64(len(c.Label())))
		dst = append(dst, c.Label()...)
	}
	return dst, nil
}

// Decode parses a complete stream. On any error the returned slice is nil.
func Decode(data []byte) ([]command.Command, error) {
	d := &decoder{buf: data}

	if len(data) < len(Magic)+1 || string(data[:len(Magic)]) != Magic {
		return nil, d.fail("bad magic")
	}
	d.off = len(Magic)
	if v := d.buf[d.off]; v != Version {
		return nil, d.fail(fmt.Sprintf("unsupported version %d", v))
	}
	d.off++

	count, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if count > uint64(d.remaining()/minRecordLen) {
		return nil, d.fail(fmt.Sprintf("record count %d exceeds stream size", count))
	}

	cmds := make([]command.Command, 0, count)
	for i := uint64(0); i < count; i++ {
		c, err := d.record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		cmds = append(cmds, c)
	}
	if d.remaining() != 0 {
		return nil, d.fail(fmt.Sprintf("%d trailing bytes", d.remaining()))
	}
	return cmds, nil
}

// DecodeRecord parses exactly one record as written by AppendRecord.
func DecodeRecord(data []byte) (command.Command, error) {
	d := &decoder{buf: data}
	c, err := d.record()
	if err != nil {
		return command.Command{}, err
	}
	if d.remaining() != 0 {
		return command.Command{}, d.fail(fmt.Sprintf("%d trailing bytes", d.remaining()))
	}
	return c, nil
}

// Writer encodes a sequence to an io.Writer in one buffered pass.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes cmds and flushes.
func (w *Writer) Write(cmds []command.Command) error {
	data, err := Encode(cmds)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// Read decodes a whole stream from r. Read errors are returned as is;
// malformed content yields ErrCorruptLog.
func Read(r io.Reader) ([]command.Command, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}

func (d *decoder) fail(reason string) error {
	return fmt.Errorf("%w: %s at offset %d", ErrCorruptLog, reason, d.off)
}

func (d *decoder) readByte() (byte, error) {
	if d.remaining() < 1 {
		return 0, d.fail("truncated")
	}
	b := d.buf[d.off]
	d.off++
	return b, nil
}

func (d *decoder) readBool() (bool, error) {
	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	d.off--
	return false, d.fail(fmt.Sprintf("invalid bool byte %#x", b))
}

func (d *decoder) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.off:])
	if n <= 0 {
		return 0, d.fail("bad uvarint")
	}
	d.off += n
	return v, nil
}

func (d *decoder) readVarint() (int64, error) {
	v, n := binary.Varint(d.buf[d.off:])
	if n <= 0 {
		return 0, d.fail("bad varint")
	}
	d.off += n
	return v, nil
}

func (d *decoder) readFloat() (float64, error) {
	if d.remaining() < 8 {
		return 0, d.fail("truncated")
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(d.buf[d.off:]))
	d.off += 8
	return v, nil
}

func (d *decoder) readLabel() (string, error) {
	n, err := d.readUvarint()
	if err != nil {
		return "", err
	}
	if n > MaxLabelLen {
		return "", d.fail(fmt.Sprintf("label length %d exceeds %d", n, MaxLabelLen))
	}
	if uint64(d.remaining()) < n {
		return "", d.fail("truncated")
	}
	raw := d.buf[d.off : d.off+int(n)]
	if !utf8.Valid(raw) {
		return "", d.fail("label is not valid UTF-8")
	}
	d.off += int(n)
	return string(raw), nil
}

func (d *decoder) record() (command.Command, error) {
	start := d.off

	tag, err := d.readByte()
	if err != nil {
		return command.Command{}, err
	}
	shape := command.Shape(tag)
	if !shape.Valid() {
		d.off = start
		return command.Command{}, d.fail(fmt.Sprintf("unknown tag %#x", tag))
	}

	rawKind, err := d.readUvarint()
	if err != nil {
		return command.Command{}, err
	}
	if rawKind > math.MaxUint16 || !command.Kind(rawKind).Known() {
		return command.Command{}, d.fail(fmt.Sprintf("unknown kind %d", rawKind))
	}
	kind := command.Kind(rawKind)
	if kind.Shape() != shape {
		return command.Command{}, d.fail(fmt.Sprintf("kind %s tagged as %s", kind, shape))
	}

	t, err := d.readFloat()
	if err != nil {
		return command.Command{}, err
	}

	var p command.Payload
	switch shape {
	case command.ShapeMarker:
	case command.ShapeBoolean:
		if p.ToState, err = d.readBool(); err != nil {
			return command.Command{}, err
		}
	case command.ShapeIndexed:
		idx, err := d.readVarint()
		if err != nil {
			return command.Command{}, err
		}
		if idx < math.MinInt32 || idx > math.MaxInt32 {
			return command.Command{}, d.fail(fmt.Sprintf("index %d out of range", idx))
		}
		p.Index = int(idx)
		if p.ToState, err = d.readBool(); err != nil {
			return command.Command{}, err
		}
	case command.ShapeContinuous:
		if p.Increase, err = d.readBool(); err != nil {
			return command.Command{}, err
		}
		has, err := d.readBool()
		if err != nil {
			return command.Command{}, err
		}
		if has {
			v, err := d.readFloat()
			if err != nil {
				return command.Command{}, err
			}
			p.Target = &v
		}
	case command.ShapePaused:
		if p.Duration, err = d.readFloat(); err != nil {
			return command.Command{}, err
		}
	case command.ShapeCamera, command.ShapeSave:
		if p.Label, err = d.readLabel(); err != nil {
			return command.Command{}, err
		}
	}

	c, err := command.FromParts(kind, t, p)
	if err != nil {
		return command.Command{}, d.fail(err.Error())
	}
	if c.Label() != p.Label {
		return command.Command{}, d.fail("label is not NFC normalized")
	}
	return c, nil
}

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}
