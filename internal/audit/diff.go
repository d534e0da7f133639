package audit

import "reflect"

// RedactedFields maps a sensitive field name to its redaction placeholder
// (spec.md §4.9: "password → HIDDEN, totp_secret → ***********, token →
// ***********").
var RedactedFields = map[string]string{
	"password":   "HIDDEN",
	"totp_secret": "***********",
	"token":      "***********",
}

// Diff implements the Update/audit diff helper (spec.md §4.9): given the
// current entity's fields and a patch (only keys the caller actually set),
// it returns the old/new value maps restricted to fields that changed, with
// sensitive fields redacted, plus whether anything changed at all.
//
// Fields present in patch but equal to the current value are dropped.
// Fields absent from patch are left untouched and never appear in the maps.
func Diff(current map[string]any, patch map[string]any) (oldValues, newValues map[string]any, modified bool) {
	oldValues = make(map[string]any)
	newValues = make(map[string]any)

	for key, newVal := range patch {
		curVal, existed := current[key]
		if existed && reflect.DeepEqual(curVal, newVal) {
			continue
		}

		modified = true

		if placeholder, sensitive := RedactedFields[key]; sensitive {
			oldValues[key] = placeholder
			newValues[key] = placeholder
			continue
		}

		oldValues[key] = curVal
		newValues[key] = newVal
	}

	if !modified {
		return nil, nil, false
	}
	return oldValues, newValues, true
}
