// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// Key joins parts with "-" into a deterministic cache key. Floats are
// formatted with four decimals so nearby requests for the same point share
// an entry:
//
//	Key("farm-data", 40.7128, -74.006, "2024-06-01") == "farm-data-40.7128--74.0060-2024-06-01"
func Key(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('-')
		}
		switch v := p.(type) {
		case string:
			b.WriteString(strings.TrimSpace(v))
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'f', 4, 64))
		case float32:
			b.WriteString(strconv.FormatFloat(float64(v), 'f', 4, 32))
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		case fmt.Stringer:
			b.WriteString(v.String())
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}
