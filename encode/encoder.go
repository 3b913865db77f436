// Package encoder implements the declarative field layout shared by all
// SMB2 wire structures.
//
// A structure describes its layout with `smb` struct tags. Fixed-width
// fields are placed sequentially in declaration order. Variable-length
// regions are either inline (placed at their declaration position, sized
// by a companion count/length field) or trailing (appended after the
// fixed head and located by a back-patched offset/length pair):
//
//	type SessionSetupRequest struct {
//		StructureSize        uint16 `smb:"const:25"`
//		Flags                uint8
//		SecurityMode         uint8
//		Capabilities         uint32
//		Channel              uint32
//		SecurityBufferOffset uint16 `smb:"offsetof:SecurityBuffer"`
//		SecurityBufferLength uint16 `smb:"lenof:SecurityBuffer"`
//		PreviousSessionId    uint64
//		SecurityBuffer       []byte `smb:"trailing"`
//	}
//
// Offsets are measured from the start of the SMB2 header unless the
// trailing field carries `base:self`, in which case they are measured
// from the start of the structure itself. Both conventions appear on the
// wire, so the base is configured per field, never globally.
//
// Tag reference:
//
//	const:N     write the constant N, validate it on decode
//	countof:F   this integer holds the element count of field F
//	lenof:F     this integer holds the byte length of field F
//	offsetof:F  this integer holds the offset of field F (back-patched)
//	trailing    variable region appended after the fixed head
//	base:self   offsets of this region are relative to the structure
//	align:N     pad the region start to an N-byte boundary
package encoder

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var le = binary.LittleEndian

// headerSize is the fixed size of the SMB2 packet header. Bodies encoded
// with nil Options are assumed to sit immediately after one.
const headerSize = 64

// Options configure how offsets are interpreted for one structure.
type Options struct {
	// HeaderOffset is the distance in bytes from the start of the SMB2
	// header to the start of the structure being encoded or decoded.
	// Header-relative offset fields are computed against it.
	HeaderOffset int
}

func (o *Options) headerOffset() int {
	if o == nil {
		return headerSize
	}
	return o.HeaderOffset
}

// Marshaler is implemented by variable regions whose layout the tag
// grammar cannot express, such as chained context lists.
type Marshaler interface {
	MarshalSMB() ([]byte, error)
}

// Unmarshaler is the inverse of Marshaler for length-delimited regions.
type Unmarshaler interface {
	UnmarshalSMB(p []byte) error
}

// CountedUnmarshaler is implemented by regions located by an offset/count
// pair instead of an offset/length pair; p extends to the end of the
// enclosing structure's buffer.
type CountedUnmarshaler interface {
	UnmarshalSMBCount(p []byte, count int) error
}

// ----------------------------------------------------------------------------
// Errors
//

// TruncatedBufferError reports a buffer too short for the bytes a
// structure declares.
type TruncatedBufferError struct {
	Expected int
	Actual   int
}

func (err *TruncatedBufferError) Error() string {
	return fmt.Sprintf("truncated buffer: need %d bytes, have %d", err.Expected, err.Actual)
}

// InvalidOffsetError reports an offset/length pair that resolves outside
// the input buffer.
type InvalidOffsetError struct {
	Field  string
	Offset uint64
	Length uint64
	Limit  int
}

func (err *InvalidOffsetError) Error() string {
	return fmt.Sprintf("invalid offset for %s: offset %d, length %d, buffer %d", err.Field, err.Offset, err.Length, err.Limit)
}

// StructureSizeMismatchError reports a structure-size field that does not
// carry the value documented for that structure.
type StructureSizeMismatchError struct {
	Struct   string
	Expected uint16
	Actual   uint16
}

func (err *StructureSizeMismatchError) Error() string {
	return fmt.Sprintf("structure size mismatch in %s: expected %d, got %d", err.Struct, err.Expected, err.Actual)
}

// FieldOverflowError reports a value too large for the bit width of the
// field that must carry it on the wire.
type FieldOverflowError struct {
	Field string
	Value uint64
	Max   uint64
}

func (err *FieldOverflowError) Error() string {
	return fmt.Sprintf("value %d overflows field %s (max %d)", err.Value, err.Field, err.Max)
}

// ----------------------------------------------------------------------------
// Layout plans
//

type field struct {
	idx      int
	name     string
	typ      reflect.Type
	constVal uint64
	hasConst bool
	offsetOf string
	lenOf    string
	countOf  string
	trailing bool
	baseSelf bool
	align    int
}

func (f *field) derived() bool {
	return f.offsetOf != "" || f.lenOf != "" || f.countOf != ""
}

func (f *field) variable() bool {
	if f.trailing {
		return true
	}
	if f.derived() || f.hasConst {
		return false
	}
	return f.typ.Kind() == reflect.Slice
}

type plan struct {
	typ       reflect.Type
	fields    []*field
	offsetFor map[string]*field // variable field name -> its offset field
	lenFor    map[string]*field
	countFor  map[string]*field
	sizeField *field // first const-tagged field, if any
}

var planCache sync.Map // reflect.Type -> *plan

func planOf(t reflect.Type) (*plan, error) {
	if p, ok := planCache.Load(t); ok {
		return p.(*plan), nil
	}

	p := &plan{
		typ:       t,
		offsetFor: make(map[string]*field),
		lenFor:    make(map[string]*field),
		countFor:  make(map[string]*field),
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			return nil, fmt.Errorf("encoder: unexported field %s.%s", t.Name(), sf.Name)
		}

		f := &field{idx: i, name: sf.Name, typ: sf.Type}

		for _, tok := range strings.Split(sf.Tag.Get("smb"), ",") {
			if tok == "" {
				continue
			}
			key, val, _ := strings.Cut(tok, ":")
			switch key {
			case "const":
				n, err := strconv.ParseUint(val, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("encoder: bad const tag on %s.%s: %v", t.Name(), sf.Name, err)
				}
				f.constVal = n
				f.hasConst = true
			case "offsetof":
				f.offsetOf = val
			case "lenof":
				f.lenOf = val
			case "countof":
				f.countOf = val
			case "trailing":
				f.trailing = true
			case "base":
				if val != "self" {
					return nil, fmt.Errorf("encoder: bad base tag on %s.%s: %q", t.Name(), sf.Name, val)
				}
				f.baseSelf = true
			case "align":
				n, err := strconv.Atoi(val)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("encoder: bad align tag on %s.%s", t.Name(), sf.Name)
				}
				f.align = n
			default:
				return nil, fmt.Errorf("encoder: unknown tag %q on %s.%s", key, t.Name(), sf.Name)
			}
		}

		if f.offsetOf != "" {
			p.offsetFor[f.offsetOf] = f
		}
		if f.lenOf != "" {
			p.lenFor[f.lenOf] = f
		}
		if f.countOf != "" {
			p.countFor[f.countOf] = f
		}
		if f.hasConst && p.sizeField == nil {
			p.sizeField = f
		}

		p.fields = append(p.fields, f)
	}

	planCache.Store(t, p)

	return p, nil
}

// ----------------------------------------------------------------------------
// Fixed-width fields
//

func intWidth(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Uint8, reflect.Int8:
		return 1
	case reflect.Uint16, reflect.Int16:
		return 2
	case reflect.Uint32, reflect.Int32:
		return 4
	case reflect.Uint64, reflect.Int64:
		return 8
	}
	return 0
}

func fixedSizeof(t reflect.Type) (int, error) {
	if n := intWidth(t); n != 0 {
		return n, nil
	}
	switch t.Kind() {
	case reflect.Array:
		n, err := fixedSizeof(t.Elem())
		if err != nil {
			return 0, err
		}
		return n * t.Len(), nil
	case reflect.Struct:
		sum := 0
		for i := 0; i < t.NumField(); i++ {
			n, err := fixedSizeof(t.Field(i).Type)
			if err != nil {
				return 0, err
			}
			sum += n
		}
		return sum, nil
	}
	return 0, fmt.Errorf("encoder: %s is not a fixed-width type", t)
}

func appendUint(out []byte, width int, v uint64) []byte {
	switch width {
	case 1:
		return append(out, byte(v))
	case 2:
		return append(out, byte(v), byte(v>>8))
	case 4:
		var b [4]byte
		le.PutUint32(b[:], uint32(v))
		return append(out, b[:]...)
	default:
		var b [8]byte
		le.PutUint64(b[:], v)
		return append(out, b[:]...)
	}
}

func readUint(p []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(p[0])
	case 2:
		return uint64(le.Uint16(p))
	case 4:
		return uint64(le.Uint32(p))
	default:
		return le.Uint64(p)
	}
}

func appendFixed(out []byte, fv reflect.Value) ([]byte, error) {
	t := fv.Type()
	switch t.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return appendUint(out, intWidth(t), fv.Uint()), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendUint(out, intWidth(t), uint64(fv.Int())), nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			for i := 0; i < t.Len(); i++ {
				out = append(out, byte(fv.Index(i).Uint()))
			}
			return out, nil
		}
		var err error
		for i := 0; i < t.Len(); i++ {
			out, err = appendFixed(out, fv.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case reflect.Struct:
		var err error
		for i := 0; i < t.NumField(); i++ {
			out, err = appendFixed(out, fv.Field(i))
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("encoder: cannot encode field of type %s", t)
}

func readFixed(buf []byte, pos int, fv reflect.Value) (int, error) {
	t := fv.Type()
	if w := intWidth(t); w != 0 {
		if pos+w > len(buf) {
			return 0, &TruncatedBufferError{Expected: pos + w, Actual: len(buf)}
		}
		v := readUint(buf[pos:], w)
		switch t.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fv.SetInt(int64(v))
		default:
			fv.SetUint(v)
		}
		return pos + w, nil
	}
	switch t.Kind() {
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			n := t.Len()
			if pos+n > len(buf) {
				return 0, &TruncatedBufferError{Expected: pos + n, Actual: len(buf)}
			}
			for i := 0; i < n; i++ {
				fv.Index(i).SetUint(uint64(buf[pos+i]))
			}
			return pos + n, nil
		}
		var err error
		for i := 0; i < t.Len(); i++ {
			pos, err = readFixed(buf, pos, fv.Index(i))
			if err != nil {
				return 0, err
			}
		}
		return pos, nil
	case reflect.Struct:
		var err error
		for i := 0; i < t.NumField(); i++ {
			pos, err = readFixed(buf, pos, fv.Field(i))
			if err != nil {
				return 0, err
			}
		}
		return pos, nil
	}
	return 0, fmt.Errorf("encoder: cannot decode field of type %s", t)
}

// ----------------------------------------------------------------------------
// Variable regions
//

// regionBytes serializes a variable field. present is false when the
// field holds no data and its offset/length pair must stay zero.
func regionBytes(fv reflect.Value) (b []byte, present bool, err error) {
	if m, ok := fv.Interface().(Marshaler); ok {
		switch fv.Kind() {
		case reflect.Ptr:
			if fv.IsNil() {
				return nil, false, nil
			}
		case reflect.Slice:
			if fv.Len() == 0 {
				return nil, false, nil
			}
		}
		b, err = m.MarshalSMB()
		if err != nil {
			return nil, false, err
		}
		return b, true, nil
	}

	if fv.Kind() != reflect.Slice {
		return nil, false, fmt.Errorf("encoder: variable field of type %s", fv.Type())
	}
	if fv.Len() == 0 {
		return nil, false, nil
	}

	switch fv.Type().Elem().Kind() {
	case reflect.Uint8:
		b = make([]byte, fv.Len())
		reflect.Copy(reflect.ValueOf(b), fv)
		return b, true, nil
	case reflect.Uint16:
		b = make([]byte, 0, fv.Len()*2)
		for i := 0; i < fv.Len(); i++ {
			b = appendUint(b, 2, fv.Index(i).Uint())
		}
		return b, true, nil
	case reflect.Struct:
		for i := 0; i < fv.Len(); i++ {
			b, err = appendFixed(b, fv.Index(i))
			if err != nil {
				return nil, false, err
			}
		}
		return b, true, nil
	}
	return nil, false, fmt.Errorf("encoder: variable field of type %s", fv.Type())
}

// setRegion assigns decoded region bytes to a variable field. count is
// meaningful only when counted is true.
func setRegion(fv reflect.Value, region []byte, count int, counted bool) error {
	addr := fv
	if fv.CanAddr() {
		addr = fv.Addr()
	}
	if counted {
		if u, ok := addr.Interface().(CountedUnmarshaler); ok {
			return u.UnmarshalSMBCount(region, count)
		}
	}
	if u, ok := addr.Interface().(Unmarshaler); ok {
		return u.UnmarshalSMB(region)
	}

	if fv.Kind() != reflect.Slice {
		return fmt.Errorf("encoder: variable field of type %s", fv.Type())
	}

	switch fv.Type().Elem().Kind() {
	case reflect.Uint8:
		b := reflect.MakeSlice(fv.Type(), len(region), len(region))
		reflect.Copy(b, reflect.ValueOf(region))
		fv.Set(b)
		return nil
	case reflect.Uint16:
		if counted {
			if count*2 > len(region) {
				return &TruncatedBufferError{Expected: count * 2, Actual: len(region)}
			}
			region = region[:count*2]
		} else if len(region)%2 != 0 {
			return &TruncatedBufferError{Expected: len(region) + 1, Actual: len(region)}
		}
		n := len(region) / 2
		s := reflect.MakeSlice(fv.Type(), n, n)
		for i := 0; i < n; i++ {
			s.Index(i).SetUint(uint64(le.Uint16(region[2*i:])))
		}
		fv.Set(s)
		return nil
	case reflect.Struct:
		elemSize, err := fixedSizeof(fv.Type().Elem())
		if err != nil {
			return err
		}
		if !counted {
			if elemSize == 0 || len(region)%elemSize != 0 {
				return &TruncatedBufferError{Expected: len(region) + elemSize, Actual: len(region)}
			}
			count = len(region) / elemSize
		}
		if int64(count)*int64(elemSize) > int64(len(region)) {
			return &TruncatedBufferError{Expected: count * elemSize, Actual: len(region)}
		}
		s := reflect.MakeSlice(fv.Type(), count, count)
		pos := 0
		for i := 0; i < count; i++ {
			pos, err = readFixed(region, pos, s.Index(i))
			if err != nil {
				return err
			}
		}
		fv.Set(s)
		return nil
	}
	return fmt.Errorf("encoder: variable field of type %s", fv.Type())
}

func countValue(val reflect.Value, target string) (int, error) {
	fv := val.FieldByName(target)
	if !fv.IsValid() {
		return 0, fmt.Errorf("encoder: countof references unknown field %s", target)
	}
	if fv.Kind() == reflect.Slice {
		return fv.Len(), nil
	}
	if c, ok := fv.Interface().(interface{ Count() int }); ok {
		return c.Count(), nil
	}
	return 0, fmt.Errorf("encoder: cannot count field %s", target)
}

// ----------------------------------------------------------------------------
// Marshal / Unmarshal
//

type patchLoc struct {
	pos   int
	width int
}

// Marshal encodes a structure into a fresh byte slice according to its
// layout tags. Offset and length fields are back-patched once each
// trailing region's final position is known; the values already stored
// in those fields are ignored. A nil opt assumes the structure directly
// follows a 64-byte SMB2 header.
func Marshal(v interface{}, opt *Options) ([]byte, error) {
	val := reflect.Indirect(reflect.ValueOf(v))
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("encoder: cannot marshal %T", v)
	}
	p, err := planOf(val.Type())
	if err != nil {
		return nil, err
	}

	hoff := opt.headerOffset()

	var out []byte

	patches := make(map[string]patchLoc) // derived field name -> location

	// Fixed head, declaration order. Offset and length fields are written
	// as zero placeholders and patched once their regions are placed.
	for _, f := range p.fields {
		if f.trailing {
			continue
		}
		fv := val.Field(f.idx)

		switch {
		case f.hasConst:
			out = appendUint(out, intWidth(f.typ), f.constVal)
		case f.countOf != "":
			n, err := countValue(val, f.countOf)
			if err != nil {
				return nil, err
			}
			if err := checkWidth(f.name, uint64(n), intWidth(f.typ)); err != nil {
				return nil, err
			}
			out = appendUint(out, intWidth(f.typ), uint64(n))
		case f.offsetOf != "" || f.lenOf != "":
			patches[f.name] = patchLoc{pos: len(out), width: intWidth(f.typ)}
			out = appendUint(out, intWidth(f.typ), 0)
		case f.variable():
			// Inline region at its declaration position.
			b, present, err := regionBytes(fv)
			if err != nil {
				return nil, err
			}
			if present {
				if lf, ok := p.lenFor[f.name]; ok {
					if err := patchValue(out, patches, lf.name, uint64(len(b))); err != nil {
						return nil, err
					}
				}
				out = append(out, b...)
			}
		default:
			out, err = appendFixed(out, fv)
			if err != nil {
				return nil, err
			}
		}
	}

	// Trailing regions, declaration order.
	for _, f := range p.fields {
		if !f.trailing {
			continue
		}
		b, present, err := regionBytes(val.Field(f.idx))
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}

		base := hoff
		if f.baseSelf {
			base = 0
		}
		if f.align > 1 {
			for (base+len(out))%f.align != 0 {
				out = append(out, 0)
			}
		}

		off := uint64(base + len(out))
		out = append(out, b...)

		if of, ok := p.offsetFor[f.name]; ok {
			if err := patchValue(out, patches, of.name, off); err != nil {
				return nil, err
			}
		}
		if lf, ok := p.lenFor[f.name]; ok {
			if err := patchValue(out, patches, lf.name, uint64(len(b))); err != nil {
				return nil, err
			}
		}
	}

	// Some structure-size constants count one byte of a buffer that may
	// be empty; the body still carries that byte on the wire.
	if p.sizeField != nil {
		for len(out) < int(p.sizeField.constVal) {
			out = append(out, 0)
		}
	}

	return out, nil
}

func checkWidth(name string, v uint64, width int) error {
	if width >= 8 {
		return nil
	}
	max := uint64(1)<<(8*width) - 1
	if v > max {
		return &FieldOverflowError{Field: name, Value: v, Max: max}
	}
	return nil
}

func patchValue(out []byte, patches map[string]patchLoc, name string, v uint64) error {
	loc, ok := patches[name]
	if !ok {
		return fmt.Errorf("encoder: no placeholder for field %s", name)
	}
	if err := checkWidth(name, v, loc.width); err != nil {
		return err
	}
	switch loc.width {
	case 1:
		out[loc.pos] = byte(v)
	case 2:
		le.PutUint16(out[loc.pos:], uint16(v))
	case 4:
		le.PutUint32(out[loc.pos:], uint32(v))
	default:
		le.PutUint64(out[loc.pos:], v)
	}
	return nil
}

// Unmarshal decodes buf into the structure pointed to by v. Fixed fields
// are read sequentially; every offset/length pair is validated against
// the buffer bounds before its region is sliced, and a zero offset/length
// pair decodes to an absent (nil) region. buf must start at the structure
// and extend to the end of the enclosing message so header-relative
// offsets stay resolvable; decoded regions are copied, never aliased.
func Unmarshal(buf []byte, v interface{}, opt *Options) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("encoder: cannot unmarshal into %T", v)
	}
	val := ptr.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("encoder: cannot unmarshal into %T", v)
	}
	p, err := planOf(val.Type())
	if err != nil {
		return err
	}

	hoff := opt.headerOffset()

	pos := 0

	for _, f := range p.fields {
		if f.trailing {
			continue
		}
		fv := val.Field(f.idx)

		switch {
		case f.hasConst:
			w := intWidth(f.typ)
			if pos+w > len(buf) {
				return &TruncatedBufferError{Expected: pos + w, Actual: len(buf)}
			}
			got := readUint(buf[pos:], w)
			if got != f.constVal {
				return &StructureSizeMismatchError{
					Struct:   p.typ.Name(),
					Expected: uint16(f.constVal),
					Actual:   uint16(got),
				}
			}
			fv.SetUint(got)
			pos += w
		case f.variable():
			// Inline region sized by a companion count or length field,
			// which precedes it in the fixed head.
			if cf, ok := p.countFor[f.name]; ok {
				count := int(val.Field(cf.idx).Uint())
				elemSize := 1
				switch f.typ.Elem().Kind() {
				case reflect.Uint16:
					elemSize = 2
				case reflect.Struct:
					elemSize, err = fixedSizeof(f.typ.Elem())
					if err != nil {
						return err
					}
				}
				n := count * elemSize
				if n < 0 || pos+n > len(buf) {
					return &TruncatedBufferError{Expected: pos + n, Actual: len(buf)}
				}
				if err := setRegion(fv, buf[pos:pos+n], count, true); err != nil {
					return err
				}
				pos += n
			} else if lf, ok := p.lenFor[f.name]; ok {
				n := int(val.Field(lf.idx).Uint())
				if n < 0 || pos+n > len(buf) {
					return &TruncatedBufferError{Expected: pos + n, Actual: len(buf)}
				}
				if err := setRegion(fv, buf[pos:pos+n], 0, false); err != nil {
					return err
				}
				pos += n
			} else {
				// No companion field: the region runs to the end of the
				// buffer.
				if err := setRegion(fv, buf[pos:], 0, false); err != nil {
					return err
				}
				pos = len(buf)
			}
		default:
			pos, err = readFixed(buf, pos, fv)
			if err != nil {
				return err
			}
		}
	}

	// Trailing regions, located only by their decoded offset fields.
	// Peers pad inconsistently, so the sequential cursor is never used
	// to find them.
	for _, f := range p.fields {
		if !f.trailing {
			continue
		}
		fv := val.Field(f.idx)

		of, ok := p.offsetFor[f.name]
		if !ok {
			return fmt.Errorf("encoder: trailing field %s.%s has no offset reference", p.typ.Name(), f.name)
		}
		off := val.Field(of.idx).Uint()

		var length uint64
		var count int
		counted := false
		if lf, ok := p.lenFor[f.name]; ok {
			length = val.Field(lf.idx).Uint()
		} else if cf, ok := p.countFor[f.name]; ok {
			count = int(val.Field(cf.idx).Uint())
			counted = true
		}

		// A zero offset/length (or zero count) pair is the documented
		// "absent" sentinel for optional regions.
		if counted {
			if count == 0 {
				continue
			}
		} else if length == 0 {
			continue
		}

		base := uint64(hoff)
		if f.baseSelf {
			base = 0
		}
		if off < base {
			return &InvalidOffsetError{Field: f.name, Offset: off, Length: length, Limit: len(buf)}
		}
		rel := off - base
		if rel > uint64(len(buf)) || rel+length > uint64(len(buf)) {
			return &InvalidOffsetError{Field: f.name, Offset: off, Length: length, Limit: len(buf)}
		}

		region := buf[rel:]
		if !counted {
			region = buf[rel : rel+length]
		}
		if err := setRegion(fv, region, count, counted); err != nil {
			return err
		}
	}

	return nil
}
