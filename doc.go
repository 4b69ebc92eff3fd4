// Package rwanda provides read-only lookups over Rwanda's administrative
// hierarchy: provinces contain districts, which contain sectors, which
// contain cells, which contain villages.
//
// The hierarchy is loaded once from an embedded YAML dataset and never
// changes afterwards, so every function in this package is safe for
// concurrent use without locking.
//
// # Filters
//
// Each level has a query function that accepts an optional Filter naming
// ancestor levels. Filter values match stored names case-insensitively:
//
//	cells, ok := rwanda.Cells(&rwanda.Filter{
//	    Province: "Kigali",
//	    District: "Kicukiro",
//	    Sector:   "nyarUguNgA",
//	})
//	// cells == []string{"Kamashashi", "Nonko", "Rwimbogo"}, ok == true
//
// ok is false when a named ancestor does not resolve. That is different
// from a resolved ancestor with no children, which returns an empty slice
// and ok == true. A nil Filter returns every name at the level.
//
// An omitted level acts as a wildcard: deeper filters are matched against
// the children of every candidate at that level.
//
// # Custom datasets
//
// Default returns the table built from the embedded extract. Parse and
// LoadFile build a Table from any YAML file with the same shape:
//
//	East:
//	  Bugesera:
//	    Gashora:
//	      Biryogo: [Kagese, Kabuye]
//
// Mapping keys keep their order. A sequence lists children that have no
// further subdivisions in the file.
package rwanda
