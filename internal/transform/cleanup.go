package transform

import (
	"regexp"
	"strconv"
	"strings"
)

var unitSuffixes = []string{"kg", "cm³", "dB(A)", "Wh/km"}

var centimetres = regexp.MustCompile(`(\d+)(?:\.?\d*)\s*cm`)

// thousandsDot is a dot grouping three digits, as in "1.395 kg".
var thousandsDot = regexp.MustCompile(`(\d)\.(\d{3})\b`)

// cleanValue strips unit suffixes, drops the thousands separators that come
// with them and turns centimetre figures into millimetres.
func cleanValue(v string) string {
	for _, u := range unitSuffixes {
		if strings.Contains(v, u) {
			v = dropThousandsDots(v)
			break
		}
	}
	for _, u := range unitSuffixes {
		if strings.Contains(v, u) {
			v = strings.TrimSpace(strings.ReplaceAll(v, u, ""))
		}
	}
	if strings.Contains(v, "cm") {
		v = centimetres.ReplaceAllStringFunc(v, func(m string) string {
			n, err := strconv.Atoi(centimetres.FindStringSubmatch(m)[1])
			if err != nil {
				return m
			}
			return strconv.Itoa(n * 10)
		})
	}
	return v
}

// dropThousandsDots removes grouping dots only. Decimals such as "15.5" and
// dotted marks such as "55R01.1234" are left alone.
func dropThousandsDots(v string) string {
	for {
		next := thousandsDot.ReplaceAllString(v, "$1$2")
		if next == v {
			return v
		}
		v = next
	}
}
