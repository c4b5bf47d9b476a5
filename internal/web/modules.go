package web

import "github.com/evidenceledger/veritas/internal/config"

// Module is a vertical entry point into the anchoring flow. All modules share
// the same protocol; they differ in wording and in the documents they expect.
type Module struct {
	Slug      string
	Icon      string
	Title     string
	Lead      string
	Documents []string
	enabled   func(config.Features) bool
}

// Modules lists the verticals in display order.
var Modules = []Module{
	{
		Slug:      "payroll",
		Icon:      "👥",
		Title:     "Payroll",
		Lead:      "Anchor payslips so employees and auditors can prove they were never altered.",
		Documents: []string{"Payslip", "Employment contract", "Salary certificate"},
		enabled:   func(f config.Features) bool { return f.Payroll },
	},
	{
		Slug:      "accounting",
		Icon:      "💰",
		Title:     "Accounting",
		Lead:      "Anchor invoices and ledgers at the moment they are issued.",
		Documents: []string{"Invoice", "Credit note", "Annual accounts"},
		enabled:   func(f config.Features) bool { return f.Accounting },
	},
	{
		Slug:      "legal",
		Icon:      "⚖️",
		Title:     "Legal & Notary",
		Lead:      "Anchor deeds, contracts and notarial acts with a verifiable date.",
		Documents: []string{"Contract", "Deed", "Power of attorney"},
		enabled:   func(f config.Features) bool { return f.Legal },
	},
	{
		Slug:      "construction",
		Icon:      "🏗️",
		Title:     "Construction",
		Lead:      "Anchor plans, permits and site reports for every phase of a project.",
		Documents: []string{"Building permit", "Plan", "Acceptance report"},
		enabled:   func(f config.Features) bool { return f.Construction },
	},
}

// LookupModule returns the module with the given slug, and whether it is enabled.
func LookupModule(slug string, f config.Features) (Module, bool, bool) {
	for _, m := range Modules {
		if m.Slug == slug {
			return m, true, m.enabled(f)
		}
	}
	return Module{}, false, false
}

// EnabledModules returns the modules switched on in f.
func EnabledModules(f config.Features) []Module {
	var out []Module
	for _, m := range Modules {
		if m.enabled(f) {
			out = append(out, m)
		}
	}
	return out
}
