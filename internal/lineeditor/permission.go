package lineeditor

import "github.com/neolite/zaica/internal/state"

// PermissionKeyResult is the outcome of a single-key permission prompt.
type PermissionKeyResult struct {
	Level  state.Permission
	Cancel bool
}

// cyrillicPermissionMap maps two-byte Cyrillic permission-prompt replies
// to their Latin equivalents, per spec §4.B.
var cyrillicPermissionMap = map[rune]byte{
	'н': 'y', 'Н': 'y', // all
	'д': 'y', 'Д': 'y', // all
	'ы': 's', 'Ы': 's', // safe_only
	'т': 'n', 'Т': 'n', // none
}

// ClassifyPermissionKey maps a single decoded key event to a permission
// decision. key is already decoded, so a two-byte Cyrillic reply arrives
// as one rune.
func ClassifyPermissionKey(key Key) PermissionKeyResult {
	r := key.Rune
	if mapped, ok := cyrillicPermissionMap[r]; ok {
		r = rune(mapped)
	}

	switch {
	case key.Kind == KeyEscape:
		return PermissionKeyResult{Level: state.PermissionNone, Cancel: true}
	case key.Kind == KeyCtrlC:
		return PermissionKeyResult{Level: state.PermissionNone}
	case r == 'y' || r == 'Y':
		return PermissionKeyResult{Level: state.PermissionAll}
	case r == 's' || r == 'S':
		return PermissionKeyResult{Level: state.PermissionSafeOnly}
	case r == 'n' || r == 'N':
		return PermissionKeyResult{Level: state.PermissionNone}
	default:
		return PermissionKeyResult{Level: state.PermissionNone}
	}
}

// ReadPermissionKey reads one key from r and classifies it. It does not
// change the terminal mode; the caller puts the terminal in raw mode first.
func ReadPermissionKey(r ByteReader) (PermissionKeyResult, error) {
	key, err := Read(r)
	if err != nil {
		return PermissionKeyResult{}, err
	}
	return ClassifyPermissionKey(key), nil
}
