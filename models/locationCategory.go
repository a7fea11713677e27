package models

import "strings"

// LocationCategory maps a location path fragment to a semantic movement category.
type LocationCategory struct {
	Pattern string `json:"pattern"`
	Label   string `json:"label"`
}

// LocationCategoryMap is ordered: Resolve returns the label of the first
// pattern contained in the destination path, so earlier entries take
// precedence over later ones that would also match.
type LocationCategoryMap []LocationCategory

func (m LocationCategoryMap) Resolve(destinationPath string) string {
	for _, c := range m {
		if strings.Contains(destinationPath, c.Pattern) {
			return c.Label
		}
	}
	return UnknownCategory
}

// DefaultLocationCategories is the location table of the Kumulus warehouses.
func DefaultLocationCategories() LocationCategoryMap {
	return LocationCategoryMap{
		{Pattern: "M-KH/Stock", Label: "Retour vers le stock"},
		{Pattern: "Virtual Locations/Réparation", Label: "Consommation"},
		{Pattern: "TMSS/Stock", Label: "Retour vers le stock"},
		{Pattern: "M-KH/Stock/Recyclage", Label: "Retour vers le stock"},
		{Pattern: "Virtual Locations/Scrap", Label: "Rebut"},
		{Pattern: "KHS/Stock", Label: "Retour vers le stock"},
		{Pattern: "TMSS/Stock/Recyclage", Label: "Retour vers le stock"},
		{Pattern: "Virtual Locations/Production", Label: "Consommation"},
		{Pattern: "Partners/Customers", Label: "Retour vers le stock"},
		{Pattern: "KHS/Alu technique", Label: "Retour vers le stock"},
		{Pattern: "TMSS/Pré-fabrication", Label: "Retour vers le stock"},
		{Pattern: "TMSS/Entrée", Label: "Retour vers le stock"},
		{Pattern: "KHS/TMS", Label: "Retour vers le stock"},
	}
}
