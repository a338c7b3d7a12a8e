package ast

// Equal reports structural equality between two patterns. Compiled
// regex engines are compared by source text, not by internal automaton
// state.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Kind != other.Kind || p.Variant != other.Variant || p.Mode != other.Mode {
		return false
	}
	switch p.Variant {
	case VNumber:
		switch p.Mode {
		case ModeValue, ModeGT, ModeGE, ModeLT, ModeLE:
			if p.NumVal != other.NumVal {
				return false
			}
		case ModeRange:
			if p.NumLo != other.NumLo || p.NumHi != other.NumHi {
				return false
			}
		}
	case VText:
		if p.Mode == ModeValue && p.StrVal != other.StrVal {
			return false
		}
		if p.Mode == ModeRegex && p.RxSrc != other.RxSrc {
			return false
		}
	case VByteString:
		if p.Mode == ModeValue && !bytesEqual(p.BinVal, other.BinVal) {
			return false
		}
		if p.Mode == ModeBinaryRegex && p.RxSrc != other.RxSrc {
			return false
		}
	case VDate:
		if p.Mode == ModeValue && !p.DateVal.Equal(other.DateVal) {
			return false
		}
	case VDigest:
		switch p.Mode {
		case ModeValue:
			if !p.DigestVal.Equal(other.DigestVal) {
				return false
			}
		case ModePrefix:
			if !bytesEqual(p.DigestPrefix, other.DigestPrefix) {
				return false
			}
		case ModeBinaryRegex:
			if p.RxSrc != other.RxSrc {
				return false
			}
		}
	case VKnownValue:
		switch p.Mode {
		case ModeValue:
			if p.KnownVal != other.KnownVal {
				return false
			}
		case ModeNamed:
			if p.Named != other.Named {
				return false
			}
		case ModeRegex:
			if p.RxSrc != other.RxSrc {
				return false
			}
		}
	case VArray:
		if p.Mode == ModeLength && !p.Length.Equal(other.Length) {
			return false
		}
	case VMap:
		if p.Mode == ModeLength && !p.Length.Equal(other.Length) {
			return false
		}
		if p.Mode != ModeAny && p.Mode != ModeLength {
			if len(p.Constraints) != len(other.Constraints) {
				return false
			}
			for i := range p.Constraints {
				if !p.Constraints[i].Key.Equal(other.Constraints[i].Key) ||
					!p.Constraints[i].Value.Equal(other.Constraints[i].Value) {
					return false
				}
			}
		}
	case VTagged:
		switch p.Mode {
		case ModeTag:
			if p.TagNum != other.TagNum {
				return false
			}
		case ModeName:
			if p.TagName != other.TagName {
				return false
			}
		case ModeRegex:
			if p.RxSrc != other.RxSrc {
				return false
			}
		}
	case VRepeat:
		if !p.Quantifier.Interval.Equal(other.Quantifier.Interval) || p.Quantifier.Reluctance != other.Quantifier.Reluctance {
			return false
		}
	case VCapture:
		if p.CaptureName != other.CaptureName {
			return false
		}
	}

	if !p.Sub.Equal(other.Sub) {
		return false
	}
	if len(p.Children) != len(other.Children) {
		return false
	}
	for i := range p.Children {
		if !p.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
