package printer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Printer-MIB supply table columns (RFC 3805).
const (
	oidSupplyDescription = ".1.3.6.1.2.1.43.11.1.1.6.1"
	oidSupplyMaxCapacity = ".1.3.6.1.2.1.43.11.1.1.8.1"
	oidSupplyLevel       = ".1.3.6.1.2.1.43.11.1.1.9.1"
)

// Supply is one marker supply row: toner, ink, drum, waste container.
type Supply struct {
	Description string
	Level       int
	MaxCapacity int
}

// Percent returns the remaining level as 0..100, or -1 when the device
// reported an indeterminate level.
func (s Supply) Percent() int {
	if s.Level < 0 || s.MaxCapacity <= 0 {
		return -1
	}
	p := s.Level * 100 / s.MaxCapacity
	if p > 100 {
		p = 100
	}
	return p
}

func (s Supply) String() string {
	if p := s.Percent(); p >= 0 {
		return fmt.Sprintf("%s: %d%%", s.Description, p)
	}
	return fmt.Sprintf("%s: unknown", s.Description)
}

// QuerySupplies walks the Printer-MIB supply table of a network device.
// Community defaults to "public" when empty.
func QuerySupplies(host, community string) ([]Supply, error) {
	if community == "" {
		community = "public"
	}
	client := &gosnmp.GoSNMP{
		Target:    host,
		Port:      161,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   2 * time.Second,
		Retries:   1,
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s: %w", host, err)
	}
	defer client.Conn.Close()

	rows := map[int]*Supply{}
	row := func(idx int) *Supply {
		s, ok := rows[idx]
		if !ok {
			s = &Supply{Level: -1, MaxCapacity: -1}
			rows[idx] = s
		}
		return s
	}

	walk := func(oid string, set func(*Supply, gosnmp.SnmpPDU)) error {
		return client.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
			var idx int
			if _, err := fmt.Sscanf(pdu.Name[strings.LastIndex(pdu.Name, ".")+1:], "%d", &idx); err != nil {
				return nil
			}
			set(row(idx), pdu)
			return nil
		})
	}

	if err := walk(oidSupplyDescription, func(s *Supply, pdu gosnmp.SnmpPDU) {
		switch v := pdu.Value.(type) {
		case string:
			s.Description = v
		case []byte:
			s.Description = string(v)
		}
	}); err != nil {
		return nil, fmt.Errorf("snmp walk %s: %w", host, err)
	}
	_ = walk(oidSupplyMaxCapacity, func(s *Supply, pdu gosnmp.SnmpPDU) {
		s.MaxCapacity = int(gosnmp.ToBigInt(pdu.Value).Int64())
	})
	_ = walk(oidSupplyLevel, func(s *Supply, pdu gosnmp.SnmpPDU) {
		s.Level = int(gosnmp.ToBigInt(pdu.Value).Int64())
	})

	indexes := make([]int, 0, len(rows))
	for idx := range rows {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	out := make([]Supply, 0, len(rows))
	for _, idx := range indexes {
		out = append(out, *rows[idx])
	}
	return out, nil
}
