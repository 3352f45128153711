// Package packfile decodes a Git packfile (protocol version 2) received
// over the wire during a clone. Packs are never persisted to disk in
// this module, so the reader only ever moves forward over a single
// io.Reader: there's no .idx side-file and no ReaderAt-based random
// access, unlike a long-lived on-disk pack store.
package packfile

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // required by the git object format
	"encoding/binary"
	"errors"
	"hash"
	"io"

	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/ginternals/object"
	"golang.org/x/xerrors"
)

const (
	// headerSize is the size, in bytes, of a packfile's header: 4 bytes
	// of magic, 4 bytes of version, 4 bytes of object count.
	headerSize = 12
)

func packfileMagic() []byte {
	return []byte{'P', 'A', 'C', 'K'}
}

func packfileVersion() []byte {
	return []byte{0, 0, 0, 2}
}

var (
	// ErrIntOverflow is returned when a varint couldn't be parsed
	// because some data couldn't fit in an int64
	ErrIntOverflow = errors.New("int64 overflow")
	// ErrInvalidMagic is returned when a stream doesn't start with
	// the expected magic.
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrInvalidVersion is returned when a stream has an unsupported
	// version.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrChecksumMismatch is returned when the trailing SHA1 of the
	// packfile doesn't match the content that was read.
	ErrChecksumMismatch = errors.New("packfile checksum mismatch")
	// ErrUnresolvedDelta is returned when a ref-delta's base object
	// could not be found anywhere in the pack or in the provided
	// object lookup.
	ErrUnresolvedDelta = errors.New("could not resolve delta base object")
)

// entry is a single object as it was decoded off the wire, before
// delta resolution.
type entry struct {
	offset       int64
	typ          object.Type
	data         []byte
	baseOid      ginternals.Oid
	baseOffset   int64
	resolved     *object.Object
}

func (e *entry) isDelta() bool {
	return e.typ == object.ObjectDeltaOFS || e.typ == object.ObjectDeltaRef
}

// ObjectLookup is used to resolve the base of a ref-delta whose base
// object isn't part of the packfile being decoded (a thin pack).
type ObjectLookup func(oid ginternals.Oid) (*object.Object, error)

// Decode reads a full packfile from r and returns every concrete
// object it contains (deltas are resolved before being returned).
// haveObject is consulted when a ref-delta points outside of the pack;
// it may be nil if the caller knows the pack is self-contained.
func Decode(r io.Reader, haveObject ObjectLookup) ([]*object.Object, error) {
	cr := &countingReader{
		r:       bufio.NewReader(r),
		hash:    sha1.New(), //nolint:gosec // part of the git object format
		hashing: true,
	}

	var header [headerSize]byte
	if _, err := io.ReadFull(cr, header[:]); err != nil {
		return nil, xerrors.Errorf("could not read packfile header: %w", err)
	}
	if !bytes.Equal(header[0:4], packfileMagic()) {
		return nil, xerrors.Errorf("invalid header: %w", ErrInvalidMagic)
	}
	if !bytes.Equal(header[4:8], packfileVersion()) {
		return nil, xerrors.Errorf("invalid header: %w", ErrInvalidVersion)
	}
	objectCount := binary.BigEndian.Uint32(header[8:12])

	entries := make([]*entry, 0, objectCount)
	byOffset := make(map[int64]*entry, objectCount)

	for i := uint32(0); i < objectCount; i++ {
		offset := cr.count
		e, err := readEntry(cr, offset)
		if err != nil {
			return nil, xerrors.Errorf("could not read object %d/%d: %w", i+1, objectCount, err)
		}
		entries = append(entries, e)
		byOffset[offset] = e
	}

	// The trailer is the SHA1 of everything that came before it. Stop
	// feeding the hash before reading it, since the trailer itself must
	// not be part of the sum.
	cr.hashing = false
	sum := cr.hash.Sum(nil)
	var trailer [ginternals.OidSize]byte
	if _, err := io.ReadFull(cr, trailer[:]); err != nil {
		return nil, xerrors.Errorf("could not read packfile trailer: %w", err)
	}
	if !bytes.Equal(sum, trailer[:]) {
		return nil, ErrChecksumMismatch
	}

	byOid := make(map[ginternals.Oid]*object.Object, len(entries))
	resolver := &resolver{
		byOffset: byOffset,
		byOid:    byOid,
		haveObj:  haveObject,
	}
	out := make([]*object.Object, len(entries))
	for i, e := range entries {
		o, err := resolver.resolve(e)
		if err != nil {
			return nil, xerrors.Errorf("could not resolve object %d: %w", i+1, err)
		}
		out[i] = o
		byOid[o.ID()] = o
	}
	return out, nil
}

// readEntry parses a single object entry starting at the reader's
// current position. offset is the entry's position from the start of
// the stream, used to resolve OFS deltas.
func readEntry(cr *countingReader, offset int64) (e *entry, err error) {
	// The first byte of the entry's metadata contains:
	// - the MSB (1 bit)
	// - the object type (3 bits)
	// - the first chunk of the size (4 bits)
	// Subsequent bytes (if MSB is set) each carry the MSB plus 7 more
	// bits of size, little-endian encoded chunk by chunk.
	first, err := cr.ReadByte()
	if err != nil {
		return nil, xerrors.Errorf("could not read object header: %w", err)
	}

	typ := object.Type((first & 0b_0111_0000) >> 4)
	if !typ.IsValid() {
		return nil, xerrors.Errorf("unknown object type %d", typ)
	}
	size := uint64(first & 0b_0000_1111)
	if isMSBSet(first) {
		extra, _, err := readSizeVarint(cr)
		if err != nil {
			return nil, xerrors.Errorf("could not read object size: %w", err)
		}
		size |= extra << 4
	}

	e = &entry{offset: offset, typ: typ}

	switch typ { //nolint:exhaustive // only the 2 delta types need extra parsing
	case object.ObjectDeltaRef:
		var raw [ginternals.OidSize]byte
		if _, err = io.ReadFull(cr, raw[:]); err != nil {
			return nil, xerrors.Errorf("could not read delta base oid: %w", err)
		}
		e.baseOid, err = ginternals.NewOidFromHex(raw[:])
		if err != nil {
			return nil, xerrors.Errorf("could not parse delta base oid: %w", err)
		}
	case object.ObjectDeltaOFS:
		negOffset, _, err := readDeltaOffset(cr)
		if err != nil {
			return nil, xerrors.Errorf("could not read delta base offset: %w", err)
		}
		e.baseOffset = offset - negOffset
	}

	zlibR, err := zlib.NewReader(cr)
	if err != nil {
		return nil, xerrors.Errorf("could not open zlib reader: %w", err)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, zlibR)
	if closeErr := zlibR.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, xerrors.Errorf("could not inflate object: %w", err)
	}
	if uint64(buf.Len()) != size {
		return nil, xerrors.Errorf("object size mismatch: expected %d, got %d", size, buf.Len())
	}
	e.data = buf.Bytes()

	return e, nil
}

// countingReader wraps a *bufio.Reader and tracks exactly how many
// bytes have been pulled through it, so packfile entry offsets can be
// computed on a single forward pass (needed to resolve OFS deltas). It
// also feeds every consumed byte into hash while hashing is true, so
// the trailer checksum covers exactly the bytes that were read as pack
// content rather than whatever bufio happened to buffer ahead of that.
type countingReader struct {
	r       *bufio.Reader
	count   int64
	hash    hash.Hash
	hashing bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	if c.hashing && n > 0 {
		c.hash.Write(p[:n])
	}
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.count++
		if c.hashing {
			c.hash.Write([]byte{b})
		}
	}
	return b, err
}

// resolver resolves entries (including transitively deltified ones)
// into concrete objects, memoizing along the way.
type resolver struct {
	byOffset map[int64]*entry
	byOid    map[ginternals.Oid]*object.Object
	haveObj  ObjectLookup
}

func (r *resolver) resolve(e *entry) (*object.Object, error) {
	if e.resolved != nil {
		return e.resolved, nil
	}
	if !e.isDelta() {
		e.resolved = object.New(e.typ, e.data)
		return e.resolved, nil
	}

	base, err := r.resolveBase(e)
	if err != nil {
		return nil, err
	}

	content, err := applyDelta(base.Bytes(), e.data)
	if err != nil {
		return nil, xerrors.Errorf("could not apply delta: %w", err)
	}
	e.resolved = object.New(base.Type(), content)
	return e.resolved, nil
}

func (r *resolver) resolveBase(e *entry) (*object.Object, error) {
	if e.typ == object.ObjectDeltaOFS {
		baseEntry, ok := r.byOffset[e.baseOffset]
		if !ok {
			return nil, xerrors.Errorf("no object at offset %d: %w", e.baseOffset, ErrUnresolvedDelta)
		}
		return r.resolve(baseEntry)
	}

	// ref-delta: the base might be another entry in this same pack
	// (found by scanning what we've already decoded) or an object the
	// caller already has on disk.
	for _, baseEntry := range r.byOffset {
		if !baseEntry.isDelta() && baseEntry.resolved != nil && baseEntry.resolved.ID() == e.baseOid {
			return baseEntry.resolved, nil
		}
	}
	if o, ok := r.byOid[e.baseOid]; ok {
		return o, nil
	}
	for _, baseEntry := range r.byOffset {
		o, err := r.resolve(baseEntry)
		if err == nil && o.ID() == e.baseOid {
			return o, nil
		}
	}
	if r.haveObj != nil {
		o, err := r.haveObj(e.baseOid)
		if err == nil {
			return o, nil
		}
	}
	return nil, xerrors.Errorf("base %s: %w", e.baseOid.String(), ErrUnresolvedDelta)
}

// applyDelta applies a git delta (as found in a ref/ofs delta object)
// against base, and returns the reconstructed content.
//
// The format of a delta is:
//   - the size of the source object (varint)
//   - the size of the target object (varint)
//   - a stream of COPY/INSERT instructions
func applyDelta(base, delta []byte) ([]byte, error) {
	sourceSize, n, err := readSizeVarintBytes(delta)
	if err != nil {
		return nil, xerrors.Errorf("could not read source size: %w", err)
	}
	if int(sourceSize) != len(base) {
		return nil, xerrors.Errorf("base object size mismatch: expected %d, got %d", sourceSize, len(base))
	}
	delta = delta[n:]

	_, n, err = readSizeVarintBytes(delta)
	if err != nil {
		return nil, xerrors.Errorf("could not read target size: %w", err)
	}
	instructions := delta[n:]

	var out bytes.Buffer
	for i := 0; i < len(instructions); i++ {
		instr := instructions[i]

		if isMSBSet(instr) {
			// COPY: the lower 4 bits tell us which of the next 4 bytes
			// carry the (little-endian) offset into base, the next 3
			// bits tell us which of the following bytes carry the copy
			// length.
			offsetBytes := make([]byte, 4)
			for j := uint(0); j < 4; j++ {
				if (instr>>j)&1 == 1 {
					i++
					offsetBytes[j] = instructions[i]
				}
			}
			copyLenBytes := make([]byte, 4)
			for j := uint(0); j < 3; j++ {
				if (instr>>(4+j))&1 == 1 {
					i++
					copyLenBytes[j] = instructions[i]
				}
			}
			offset := binary.LittleEndian.Uint32(offsetBytes)
			copyLen := binary.LittleEndian.Uint32(copyLenBytes)
			if copyLen == 0 {
				copyLen = 0x10000
			}
			if int(offset+copyLen) > len(base) {
				return nil, xerrors.New("copy instruction out of bounds")
			}
			out.Write(base[offset : offset+copyLen])
			continue
		}

		// INSERT: the instruction byte itself is the number of literal
		// bytes that follow and should be copied into the output.
		start := i + 1
		end := start + int(instr)
		if end > len(instructions) {
			return nil, xerrors.New("insert instruction out of bounds")
		}
		out.Write(instructions[start:end])
		i = end - 1
	}
	return out.Bytes(), nil
}

// readSizeVarint reads the continuation bytes of a little-endian
// base-128 varint (the first byte, which also carries the object
// type, is parsed by the caller).
func readSizeVarint(cr *countingReader) (value uint64, bytesRead int, err error) {
	for i := 0; ; i++ {
		b, err := cr.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		bytesRead++
		chunk := unsetMSB(b)
		value |= uint64(chunk) << (uint(i) * 7)
		if !isMSBSet(b) {
			break
		}
		if i > 8 {
			return 0, 0, ErrIntOverflow
		}
	}
	return value, bytesRead, nil
}

// readSizeVarintBytes behaves like readSizeVarint but reads from an
// in-memory slice (used while applying deltas, where we already hold
// the whole instruction stream in memory).
func readSizeVarintBytes(data []byte) (value uint64, bytesRead int, err error) {
	for i, b := range data {
		bytesRead++
		chunk := unsetMSB(b)
		value |= uint64(chunk) << (uint(i) * 7)
		if !isMSBSet(b) {
			return value, bytesRead, nil
		}
		if i > 8 {
			return 0, 0, ErrIntOverflow
		}
	}
	return 0, 0, xerrors.Errorf("truncated varint: %w", io.ErrUnexpectedEOF)
}

// readDeltaOffset reads a big-endian, "offset encoding" varint used
// for OFS delta base offsets. Every chunk but the last is stored
// minus 1.
func readDeltaOffset(cr *countingReader) (offset int64, bytesRead int, err error) {
	var o uint64
	for {
		b, err := cr.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		bytesRead++
		chunk := unsetMSB(b)
		o = (o << 7) | uint64(chunk)
		if !isMSBSet(b) {
			break
		}
		o++
		if bytesRead > 9 {
			return 0, 0, ErrIntOverflow
		}
	}
	return int64(o), bytesRead, nil
}

func isMSBSet(b byte) bool {
	return b >= 0b_1000_0000
}

func unsetMSB(b byte) byte {
	return b & 0b_0111_1111
}
