package mockapi

import (
	"fmt"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

func price(v float64) *float64 { return &v }

// seedProducts is the demo catalog. The hospital bed starts archived.
var seedProducts = []struct {
	in     domain.ProductInput
	hidden bool
}{
	{in: domain.ProductInput{Name: "Digital Blood Pressure Monitor", Description: "Upper-arm cuff, irregular heartbeat detection.", Price: 2499, OldPrice: price(3299), StockQuantity: 25, Category: "Diagnostic Tools", Tag: "Bestseller"}},
	{in: domain.ProductInput{Name: "Fingertip Pulse Oximeter", Description: "SpO2 and pulse rate with OLED display.", Price: 1199, StockQuantity: 40, Category: "Diagnostic Tools"}},
	{in: domain.ProductInput{Name: "Foldable Walker with Wheels", Description: "Aluminium frame, height adjustable.", Price: 3899, StockQuantity: 8, Category: "Mobility Aids"}},
	{in: domain.ProductInput{Name: "Lightweight Wheelchair", Description: "Self-propelled, folding, 13 kg.", Price: 12999, OldPrice: price(14999), StockQuantity: 3, Category: "Mobility Aids", Tag: "Sale"}},
	{in: domain.ProductInput{Name: "Surgical Scissors", Description: "Stainless steel, 14 cm, blunt tip.", Price: 649, StockQuantity: 60, Category: "Surgical Instruments"}},
	{in: domain.ProductInput{Name: "N95 Respirator Mask (20 pack)", Description: "Five-layer filtration, adjustable nose clip.", Price: 999, StockQuantity: 100, Category: "PPE", Tag: "New"}},
	{in: domain.ProductInput{Name: "Auto CPAP Machine", Description: "Auto-adjusting pressure with heated humidifier.", Price: 42000, OldPrice: price(48000), StockQuantity: 2, Category: "Sleep Apnea", Tag: "Bestseller"}},
	{in: domain.ProductInput{Name: "Full Face CPAP Mask", Description: "Silicone cushion, medium size.", Price: 5499, StockQuantity: 0, Category: "CPAP Masks"}},
	{in: domain.ProductInput{Name: "Heated CPAP Tubing", Description: "1.8 m heated tube, universal fit.", Price: 1899, StockQuantity: 15, Category: "Accessories"}},
	{in: domain.ProductInput{Name: "Semi-Fowler Hospital Bed", Description: "Two-function manual bed with side rails.", Price: 38500, StockQuantity: 1, Category: "Hospital Equip"}, hidden: true},
}

// Seed loads the demo catalog and the initial admin account.
func Seed(s *Store, adminUser, adminPass string) error {
	for _, sp := range seedProducts {
		p := s.CreateProduct(sp.in)
		if sp.hidden {
			if err := s.ToggleVisibility(p.ID); err != nil {
				return fmt.Errorf("seed product %d: %w", p.ID, err)
			}
		}
	}
	if _, err := s.AddAdmin(adminUser, adminPass); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
