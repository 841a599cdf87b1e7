package sheet

// CMS renames headers across quarterly releases ("Column 1" in one release,
// "HCPCS/CPT Code 1" in the next). Each canonical field carries an ordered
// alias list; the first alias present in the header row wins. Aliases are
// matched case-insensitively by substring after whitespace collapsing.

// fieldSpec is one canonical column of a category's sheet.
type fieldSpec struct {
	name     string
	aliases  []string
	required bool
}

var ptpFields = []fieldSpec{
	{name: "code1", required: true, aliases: []string{
		"column 1", "hcpcs/cpt code 1", "code 1", "column one",
	}},
	{name: "code2", required: true, aliases: []string{
		"column 2", "hcpcs/cpt code 2", "code 2", "column two",
	}},
	{name: "modifier_indicator", required: false, aliases: []string{
		"modifier indicator", "modifier\n0=not allowed", "modifier 0=not allowed", "modifier",
	}},
	{name: "effective_date", required: false, aliases: []string{
		"effective date", "eff. date", "eff date", "effective",
	}},
}

var mueFields = []fieldSpec{
	{name: "code", required: true, aliases: []string{
		"hcpcs/cpt code", "hcpcs code", "cpt/hcpcs code", "hcpcs", "code",
	}},
	{name: "max_units", required: true, aliases: []string{
		"practitioner services mue values",
		"outpatient hospital services mue values",
		"facility outpatient hospital services mue values",
		"dme supplier services mue values",
		"mue values", "mue value", "max units",
	}},
	{name: "effective_date", required: false, aliases: []string{
		"mue effective date", "effective date", "eff date",
	}},
}

var aocFields = []fieldSpec{
	{name: "addon_code", required: true, aliases: []string{
		"add-on code", "addon code", "add on code", "column 1",
	}},
	{name: "primary_code", required: true, aliases: []string{
		"primary procedure code", "primary code", "column 2",
	}},
	{name: "effective_date", required: false, aliases: []string{
		"effective date", "edit effective date", "eff date",
	}},
}
