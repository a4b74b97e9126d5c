package prefs

import (
	"bytes"
	"encoding/json"
)

type member struct {
	key   string
	value json.RawMessage
}

// objectMembers decodes a JSON object into its members in document order.
// ok is false when data is not an object.
func objectMembers(data []byte) (members []member, ok bool, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, false, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false, err
		}
		members = append(members, member{key: key, value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, false, err
	}
	return members, true, nil
}

// Merge deep-merges patch into base. Objects are merged key by key
// (recursively, keeping base key order and appending new keys); any other
// value in patch, arrays included, replaces the base value wholesale.
func Merge(base, patch []byte) ([]byte, error) {
	baseMembers, baseObj, err := objectMembers(base)
	if err != nil {
		return nil, err
	}
	patchMembers, patchObj, err := objectMembers(patch)
	if err != nil {
		return nil, err
	}
	if !baseObj || !patchObj {
		return bytes.TrimSpace(patch), nil
	}

	patchIdx := make(map[string]int, len(patchMembers))
	for i, m := range patchMembers {
		patchIdx[m.key] = i
	}

	merged := make([]member, 0, len(baseMembers)+len(patchMembers))
	seen := make(map[string]bool, len(baseMembers))
	for _, m := range baseMembers {
		seen[m.key] = true
		i, ok := patchIdx[m.key]
		if !ok {
			merged = append(merged, m)
			continue
		}
		v, err := Merge(m.value, patchMembers[i].value)
		if err != nil {
			return nil, err
		}
		merged = append(merged, member{key: m.key, value: v})
	}
	for _, m := range patchMembers {
		if !seen[m.key] {
			merged = append(merged, m)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range merged {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(bytes.TrimSpace(m.value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
