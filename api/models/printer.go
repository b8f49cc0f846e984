// api/models/printer.go
package models

import "github.com/devadigapratham/printbatch/scheduler"

// Printer represents a 3D printer and the limits of one print run
type Printer struct {
	ID        string  `json:"id"`
	Company   string  `json:"company"`
	Model     string  `json:"model"`
	MaxVolume float64 `json:"max_volume"`
	MaxItems  int     `json:"max_items"`
}

// Constraints returns the printer's batch constraints
func (p *Printer) Constraints() scheduler.Constraints {
	return scheduler.Constraints{
		MaxVolume: p.MaxVolume,
		MaxItems:  p.MaxItems,
	}
}
