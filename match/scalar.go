package match

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/dcbor-community/dcborpath/ast"
	"github.com/dcbor-community/dcborpath/cbor"
	"github.com/dcbor-community/dcborpath/digest"
	"github.com/dcbor-community/dcborpath/knownvalue"
)

// dateTag is the standard CBOR tag for epoch-based date/time (RFC 8949
// §3.4.2): a tagged number of seconds since the Unix epoch.
const dateTag = 1

func evalValue(p *ast.Pattern, v cbor.Value, pathToV Path) []result {
	if !testValue(p, v) {
		return nil
	}
	return []result{{path: pathToV}}
}

// TestValuePattern reports whether the scalar Value pattern p matches v.
// Exported for package vm, whose MatchPredicate instruction needs the same
// leaf test the direct matcher uses so the two stay in lockstep.
func TestValuePattern(p *ast.Pattern, v cbor.Value) bool {
	return testValue(p, v)
}

func testValue(p *ast.Pattern, v cbor.Value) bool {
	switch p.Variant {
	case ast.VBool:
		return testBool(p, v)
	case ast.VNull:
		return v.IsNull()
	case ast.VNumber:
		return testNumber(p, v)
	case ast.VText:
		return testText(p, v)
	case ast.VByteString:
		return testBytes(p, v)
	case ast.VDate:
		return testDate(p, v)
	case ast.VDigest:
		return testDigest(p, v)
	case ast.VKnownValue:
		return testKnownValue(p, v)
	}
	return false
}

func testBool(p *ast.Pattern, v cbor.Value) bool {
	b, ok := v.AsBool()
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeTrue:
		return b
	case ast.ModeFalse:
		return !b
	}
	return false
}

func testNumber(p *ast.Pattern, v cbor.Value) bool {
	n, ok := v.AsNumber()
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeValue:
		return n == p.NumVal
	case ast.ModeRange:
		return n >= p.NumLo && n <= p.NumHi
	case ast.ModeGT:
		return n > p.NumVal
	case ast.ModeGE:
		return n >= p.NumVal
	case ast.ModeLT:
		return n < p.NumVal
	case ast.ModeLE:
		return n <= p.NumVal
	case ast.ModeNaN:
		return math.IsNaN(n)
	case ast.ModePosInf:
		return math.IsInf(n, 1)
	case ast.ModeNegInf:
		return math.IsInf(n, -1)
	}
	return false
}

func testText(p *ast.Pattern, v cbor.Value) bool {
	s, ok := v.AsText()
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeValue:
		return s == p.StrVal
	case ast.ModeRegex:
		return p.Rx.MatchString(s)
	}
	return false
}

func testBytes(p *ast.Pattern, v cbor.Value) bool {
	b, ok := v.AsBytes()
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeValue:
		return bytes.Equal(b, p.BinVal)
	case ast.ModeBinaryRegex:
		return p.Rx.MatchBytes(b)
	}
	return false
}

func testDate(p *ast.Pattern, v cbor.Value) bool {
	t, ok := decodeDate(v)
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeValue:
		return t.Equal(p.DateVal)
	}
	return false
}

func decodeDate(v cbor.Value) (time.Time, bool) {
	tag, ok := v.TagValue()
	if !ok || tag != dateTag {
		return time.Time{}, false
	}
	content, _ := v.TagContent()
	n, ok := content.AsNumber()
	if !ok {
		return time.Time{}, false
	}
	sec := math.Floor(n)
	nsec := (n - sec) * 1e9
	return time.Unix(int64(sec), int64(nsec)).UTC(), true
}

func testDigest(p *ast.Pattern, v cbor.Value) bool {
	d, ok := decodeDigest(v)
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeValue:
		return d.Equal(p.DigestVal)
	case ast.ModePrefix:
		return d.HasPrefix(p.DigestPrefix)
	case ast.ModeBinaryRegex:
		return p.Rx.MatchBytes(d.Data())
	}
	return false
}

func decodeDigest(v cbor.Value) (digest.Digest, bool) {
	tag, ok := v.TagValue()
	if !ok || tag != digest.Tag {
		return digest.Digest{}, false
	}
	content, _ := v.TagContent()
	b, ok := content.AsBytes()
	if !ok || len(b) != digest.Size {
		return digest.Digest{}, false
	}
	var d digest.Digest
	copy(d[:], b)
	return d, true
}

func testKnownValue(p *ast.Pattern, v cbor.Value) bool {
	u, ok := decodeKnownValue(v)
	if !ok {
		return false
	}
	switch p.Mode {
	case ast.ModeAny:
		return true
	case ast.ModeValue:
		return u == p.KnownVal
	case ast.ModeNamed:
		return knownvalue.Name(u) == p.Named
	case ast.ModeRegex:
		return p.Rx.MatchString(knownvalue.Name(u))
	}
	return false
}

func decodeKnownValue(v cbor.Value) (uint64, bool) {
	tag, ok := v.TagValue()
	if !ok || tag != knownvalue.Tag {
		return 0, false
	}
	content, _ := v.TagContent()
	return content.AsUnsigned()
}

// tagName is the display name for an arbitrary tag number: until a
// tag-name registry exists, it is simply the decimal tag number, matching
// Tagged(Name/Regex)'s documented fallback behavior.
func tagName(tag uint64) string {
	return strconv.FormatUint(tag, 10)
}
