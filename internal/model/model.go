package model

import "strings"

// Category is the coarse material class assigned to a component photo.
type Category string

const (
	CategoryWood       Category = "wood"
	CategoryMechanical Category = "mechanical"
	CategoryUnknown    Category = "unknown"
)

func (c Category) String() string {
	switch c {
	case CategoryWood, CategoryMechanical:
		return string(c)
	default:
		return string(CategoryUnknown)
	}
}

// LineItem is one row of a bill of materials.
type LineItem struct {
	ItemNo    string  `json:"item_no"`    // "1", "1.2" for nested parts
	Level     int     `json:"level"`      // 0 = top assembly
	PartName  string  `json:"part_name"`  //
	Quantity  int     `json:"quantity"`   //
	UnitPrice float64 `json:"unit_price"` // USD
	Material  string  `json:"material"`   //
	Subtotal  float64 `json:"subtotal"`   // Quantity x UnitPrice, set by ComputeTotals
}

// BOM is the ordered parts list of a single assembly.
type BOM struct {
	Template TemplateID `json:"template"`
	Name     string     `json:"name"`
	Items    []LineItem `json:"items"`
}

// Clone returns a deep copy of the BOM so callers can annotate items
// without touching the catalog.
func (b BOM) Clone() BOM {
	return BOM{
		Template: b.Template,
		Name:     b.Name,
		Items:    copyItems(b.Items),
	}
}

// SubAssembly describes one Level 1 entry of a BOM and its Level 2 parts.
type SubAssembly struct {
	ItemNo   string `json:"item_no"`
	Name     string `json:"name"`
	PartRows int    `json:"part_rows"`
}

// Structure summarizes the hierarchy of a BOM.
type Structure struct {
	TopLevel      int           `json:"top_level"`
	SubAssemblies []SubAssembly `json:"sub_assemblies"`
	Parts         int           `json:"parts"`
	TotalItems    int           `json:"total_items"`
}

// Structure walks the items and groups Level 2 parts under the Level 1
// sub-assembly whose ItemNo prefixes theirs.
func (b BOM) Structure() Structure {
	s := Structure{TotalItems: len(b.Items)}
	for _, it := range b.Items {
		switch it.Level {
		case 0:
			s.TopLevel++
		case 1:
			s.SubAssemblies = append(s.SubAssemblies, SubAssembly{ItemNo: it.ItemNo, Name: it.PartName})
		}
	}
	for i := range s.SubAssemblies {
		prefix := s.SubAssemblies[i].ItemNo + "."
		for _, it := range b.Items {
			if it.Level == 2 && strings.HasPrefix(it.ItemNo, prefix) {
				s.SubAssemblies[i].PartRows++
				s.Parts++
			}
		}
	}
	return s
}

// PhotoMeta holds the EXIF fields carried into reports.
type PhotoMeta struct {
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	TakenAt  string `json:"taken_at,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Software string `json:"software,omitempty"`
}

// AssemblyResult pairs an annotated BOM with its grand total and the photo
// it was built from.
type AssemblyResult struct {
	Name       string     `json:"name"`   // image basename
	Source     string     `json:"source"` // resolved path
	Template   TemplateID `json:"template"`
	BOMName    string     `json:"bom_name"`
	Category   Category   `json:"category"`
	Items      []LineItem `json:"items"`
	GrandTotal float64    `json:"grand_total"`
	Meta       *PhotoMeta `json:"meta,omitempty"`
	Duplicate  bool       `json:"duplicate,omitempty"` // perceptually matches an earlier photo in the batch
}

// NewAssemblyResult selects the template for name, computes totals and
// returns the assembled result. The category is attached as-is; it never
// influences the template.
func NewAssemblyResult(name, source string, category Category) (AssemblyResult, error) {
	bom := SelectTemplate(name)
	items, total, err := ComputeTotals(bom.Items)
	if err != nil {
		return AssemblyResult{}, err
	}
	return AssemblyResult{
		Name:       name,
		Source:     source,
		Template:   bom.Template,
		BOMName:    bom.Name,
		Category:   category,
		Items:      items,
		GrandTotal: total,
	}, nil
}

// copyItems creates a deep copy of a line item slice.
func copyItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	cp := make([]LineItem, len(items))
	copy(cp, items)
	return cp
}
