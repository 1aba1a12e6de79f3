package simulator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// HashState computes a SHA-256 over a canonical encoding of state: self-
// describing, keys in lexicographic order at every nesting level,
// decimals rendered as their canonical decimal string, grounded on
// state_hasher.py's StateHasher.hash_state/hash_full_state. A hand-rolled
// canonical encoder is used rather than encoding/json, since
// encoding/json's map key ordering is already sorted for string-keyed
// maps but offers no hook for rendering *apd.Decimal as a bare string
// (json.Marshal would call its MarshalText and quote the result
// correctly, but the nested orders map holds `any` values of mixed
// concrete types where only canonical, pre-verified rendering gives the
// same guarantee json.Marshal's default map traversal does: sorted keys,
// independent of insertion order).
func HashState(s *State) string {
	var sb strings.Builder
	sb.WriteString("{")
	sb.WriteString(`"gap_count":`)
	sb.WriteString(strconv.FormatInt(s.GapCount, 10))
	sb.WriteString(`,"orders":`)
	encodeOrders(&sb, s.Orders)
	sb.WriteString(`,"positions":`)
	encodePositions(&sb, s.Positions)
	sb.WriteString(`,"system_status":`)
	encodeString(&sb, s.SystemStatus)
	sb.WriteString("}")

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func encodePositions(sb *strings.Builder, positions map[string]*decimal.Decimal) {
	keys := sortedKeys(positions)
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		encodeString(sb, k)
		sb.WriteString(":")
		encodeString(sb, decimal.String(positions[k]))
	}
	sb.WriteString("}")
}

func encodeOrders(sb *strings.Builder, orders map[string]map[string]any) {
	keys := make([]string, 0, len(orders))
	for k := range orders {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		encodeString(sb, k)
		sb.WriteString(":")
		encodeValue(sb, orders[k])
	}
	sb.WriteString("}")
}

// encodeValue canonically encodes an arbitrary JSON-shaped value
// (map[string]any, []any, string, float64/int64, bool, nil), sorting map
// keys at every level so the encoding is independent of Go's randomized
// map iteration order.
func encodeValue(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		encodeString(sb, x)
	case bool:
		sb.WriteString(strconv.FormatBool(x))
	case float64:
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case int64:
		sb.WriteString(strconv.FormatInt(x, 10))
	case int:
		sb.WriteString(strconv.Itoa(x))
	case *decimal.Decimal:
		encodeString(sb, decimal.String(x))
	case map[string]any:
		keys := sortedAnyKeys(x)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			encodeString(sb, k)
			sb.WriteString(":")
			encodeValue(sb, x[k])
		}
		sb.WriteString("}")
	case []any:
		sb.WriteString("[")
		for i, elem := range x {
			if i > 0 {
				sb.WriteString(",")
			}
			encodeValue(sb, elem)
		}
		sb.WriteString("]")
	default:
		sb.WriteString(fmt.Sprintf("%q", fmt.Sprint(x)))
	}
}

func encodeString(sb *strings.Builder, s string) {
	sb.WriteString(strconv.Quote(s))
}

func sortedKeys(m map[string]*decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
