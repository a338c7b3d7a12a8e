package ast

import (
	"strconv"
	"strings"

	"github.com/dcbor-community/dcborpath/knownvalue"
)

// String renders p back into pattern source. Parsing String's output
// reproduces a structurally-equal Pattern.
func (p *Pattern) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func (p *Pattern) write(b *strings.Builder) {
	switch p.Kind {
	case KindValue:
		p.writeValue(b)
	case KindStructure:
		p.writeStructure(b)
	case KindMeta:
		p.writeMeta(b)
	}
}

func (p *Pattern) writeValue(b *strings.Builder) {
	switch p.Variant {
	case VBool:
		switch p.Mode {
		case ModeTrue:
			b.WriteString("true")
		case ModeFalse:
			b.WriteString("false")
		default:
			b.WriteString("bool")
		}
	case VNull:
		b.WriteString("null")
	case VNumber:
		switch p.Mode {
		case ModeAny:
			b.WriteString("number")
		case ModeValue:
			b.WriteString(formatFloat(p.NumVal))
		case ModeRange:
			b.WriteString(formatFloat(p.NumLo) + ".." + formatFloat(p.NumHi))
		case ModeGT:
			b.WriteString(">" + formatFloat(p.NumVal))
		case ModeGE:
			b.WriteString(">=" + formatFloat(p.NumVal))
		case ModeLT:
			b.WriteString("<" + formatFloat(p.NumVal))
		case ModeLE:
			b.WriteString("<=" + formatFloat(p.NumVal))
		case ModeNaN:
			b.WriteString("NaN")
		case ModePosInf:
			b.WriteString("Infinity")
		case ModeNegInf:
			b.WriteString("-Infinity")
		}
	case VText:
		switch p.Mode {
		case ModeAny:
			b.WriteString("text")
		case ModeValue:
			b.WriteString(strconv.Quote(p.StrVal))
		case ModeRegex:
			b.WriteString("/" + p.RxSrc + "/")
		}
	case VByteString:
		switch p.Mode {
		case ModeAny:
			b.WriteString("bytes")
		case ModeValue:
			b.WriteString("h'" + hexString(p.BinVal) + "'")
		case ModeBinaryRegex:
			b.WriteString("h'/" + p.RxSrc + "/'")
		}
	case VDate:
		switch p.Mode {
		case ModeAny:
			b.WriteString("date")
		case ModeValue:
			b.WriteString("date'" + p.DateVal.Format("2006-01-02T15:04:05Z07:00") + "'")
		}
	case VDigest:
		switch p.Mode {
		case ModeAny:
			b.WriteString("digest")
		case ModeValue:
			b.WriteString("digest'" + p.DigestVal.String() + "'")
		case ModePrefix:
			b.WriteString("digest'" + hexString(p.DigestPrefix) + "'")
		case ModeBinaryRegex:
			b.WriteString("digest'/" + p.RxSrc + "/'")
		}
	case VKnownValue:
		switch p.Mode {
		case ModeAny:
			b.WriteString("known")
		case ModeValue:
			b.WriteString("'" + knownvalue.Name(p.KnownVal) + "'")
		case ModeNamed:
			b.WriteString("'" + p.Named + "'")
		case ModeRegex:
			b.WriteString("'/" + p.RxSrc + "/'")
		}
	}
}

func (p *Pattern) writeStructure(b *strings.Builder) {
	switch p.Variant {
	case VArray:
		switch p.Mode {
		case ModeAny:
			b.WriteString("array")
		case ModeElements:
			b.WriteString("[")
			p.Sub.write(b)
			b.WriteString("]")
		case ModeLength:
			b.WriteString("[" + p.Length.String() + "]")
		}
	case VMap:
		switch p.Mode {
		case ModeAny:
			b.WriteString("map")
		case ModeLength:
			b.WriteString("{" + p.Length.String() + "}")
		default:
			b.WriteString("{")
			for i, kv := range p.Constraints {
				if i > 0 {
					b.WriteString(", ")
				}
				kv.Key.write(b)
				b.WriteString(": ")
				kv.Value.write(b)
			}
			b.WriteString("}")
		}
	case VTagged:
		switch p.Mode {
		case ModeAny:
			b.WriteString("tagged")
		case ModeTag:
			b.WriteString("tagged(" + strconv.FormatUint(p.TagNum, 10) + ", ")
			p.Sub.write(b)
			b.WriteString(")")
		case ModeName:
			b.WriteString("tagged(" + p.TagName + ", ")
			p.Sub.write(b)
			b.WriteString(")")
		case ModeRegex:
			b.WriteString("tagged(/" + p.RxSrc + "/, ")
			p.Sub.write(b)
			b.WriteString(")")
		}
	}
}

func (p *Pattern) writeMeta(b *strings.Builder) {
	switch p.Variant {
	case VAny:
		b.WriteString("*")
	case VAnd:
		writeJoined(b, p.Children, " & ", false)
	case VOr:
		writeJoined(b, p.Children, " | ", len(p.Children) > 1)
	case VNot:
		b.WriteString("!")
		p.Sub.write(b)
	case VRepeat:
		if selfDelimited(p.Sub) {
			p.Sub.write(b)
		} else {
			b.WriteString("(")
			p.Sub.write(b)
			b.WriteString(")")
		}
		b.WriteString(p.Quantifier.String())
	case VCapture:
		b.WriteString("@" + p.CaptureName + "(")
		p.Sub.write(b)
		b.WriteString(")")
	case VSearch:
		b.WriteString("search(")
		p.Sub.write(b)
		b.WriteString(")")
	case VSequence:
		writeJoined(b, p.Children, ", ", false)
	}
}

// selfDelimited reports whether p's own Display output is already
// bracket/paren-delimited at both ends, so a trailing quantifier can
// attach directly without an extra grouping paren — the same way grouped
// sub-patterns, bracketed arrays/maps, and @name(...)/search(...)/
// tagged(...) forms are all directly quantifiable in the grammar.
func selfDelimited(p *Pattern) bool {
	switch p.Kind {
	case KindStructure:
		switch p.Variant {
		case VArray:
			return p.Mode == ModeElements || p.Mode == ModeLength
		case VMap:
			return p.Mode != ModeAny
		case VTagged:
			return p.Mode != ModeAny
		}
	case KindMeta:
		switch p.Variant {
		case VCapture, VSearch:
			return true
		case VOr:
			return len(p.Children) > 1
		}
	}
	return false
}

func writeJoined(b *strings.Builder, children []*Pattern, sep string, parens bool) {
	if parens {
		b.WriteString("(")
	}
	for i, c := range children {
		if i > 0 {
			b.WriteString(sep)
		}
		c.write(b)
	}
	if parens {
		b.WriteString(")")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xF]
	}
	return string(out)
}
