package categories

// Default returns the production floor table
func Default() *Table {
	return &Table{Categories: []Category{
		{Name: "Main", SubCategories: []string{
			"Built up (before initial test) (MI 1.1)",
			"Initial test (MI 1.2, 1.3)",
			"Sat-Com (MI 2.1, 2.2)",
			"Batt + Form + Plastic Bag (MI 3.1, 3.2)",
			"Mylar install + Solar (MI 3.3, 3.4)",
		}},
		{Name: "Main (Part_Prep)", SubCategories: []string{
			"Mylar laser cut",
			"Wrapping Modem (MI 1)",
			"Form Cutting (MI 2)",
			"Bag cutting & Sealing (MI 3)",
			"Battery Prep (MI 4)",
			"Mylar Folding (MI 5)",
			"Solar Panel Soldering (MI 6)",
		}},
		{Name: "Ballast", SubCategories: []string{
			"Red-tag (MI: prep)",
			"Sticker Printing (MI: Sticker)",
			"Bag cutting (By machine)",
			"Bag-prep(Marking) (MI 1)",
			"Bag-prep(sealing)",
			"Actuator (MI 2)",
			"Bag Assembly (MI 3)",
			"Bag Fill + Mtrack + Sticker (MI: Fill, Seal, Sticker)",
		}},
		{Name: "Apex", SubCategories: []string{
			"Glue (MI 1.1, 1.2, 1.3, 1.4)",
			"Assembly and Test (MI 4, 5)",
			"Press (PCB) (MI 2.1, 2.2, 2.3)",
			"Press (CAP) (MI 3.1)",
		}},
		{Name: "Envelope", SubCategories: []string{
			"Box prep",
			"Neck Cutting",
			"Neck Sealing",
			"Cut Sleeve",
			"Kapton Donut Cut",
			"Mtrack and Boxing",
			"Envelope manufacturing",
		}},
		{Name: "Sensor", SubCategories: []string{
			"Long Therm Soldering",
			"Short Therm Soldering to the board",
			"Long Therm Soldering to the board",
			"Long Therm Wire cutting",
			"Short Therm Prep",
			"Humical unloading",
			"Epoxy",
			"Loading",
			"Watergate",
			"Precal/masking/Plating",
			"Cable prep",
			"Dipping Conformal boards",
			"Cleaning sensor",
			"Cleaning plates",
		}},
		{Name: "Dangly Prep", SubCategories: []string{
			"Cleaning Aluminum Sheild",
			"Folding Aluminum Shield",
			"Sensor Mylar Cut",
			"Aluminum shield + Sensor",
			"Mylar + Unit",
		}},
		{Name: "Sensor Bag Prep", SubCategories: []string{
			"Bag - heat press (MI 1)",
			"Plast tube winding (MI 2)",
			"Platic tube cutting (MI 2)",
			"Winder and Tie (MI 3)",
			"Bag Packaging (MI 4)",
			"Cable prep",
			"re-work",
		}},
		{Name: "Sensor Bag Final Assembly", SubCategories: []string{
			"Dangly + Sensoor bag",
			"re-work",
		}},
		{Name: "Final Integration", SubCategories: []string{
			"Final Test (MI: Final test)",
			"Final Assembly (MI: Main Integration)",
			"Packaging (MI: Packaging)",
			"re-work",
		}},
	}}
}
