package store

import (
	"fmt"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// matchDate scans a DATE column whether the driver hands back a time.Time
// (lib/pq) or the raw text (sqlite).
type matchDate struct {
	time.Time
}

func (d *matchDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		return fmt.Errorf("match date is null")
	default:
		return fmt.Errorf("unsupported match date type %T", src)
	}
}

func (d *matchDate) parse(s string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("parsing match date %q", s)
}
