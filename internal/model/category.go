package model

// DatasetKind identifies which of the three NCCI edit tables a dataset feeds.
type DatasetKind string

const (
	KindPTP DatasetKind = "ptp"
	KindMUE DatasetKind = "mue"
	KindAOC DatasetKind = "aoc"
)

// Category describes one downloadable NCCI dataset: where its landing page
// lives, which keywords identify its artifacts, and which table partition
// its rows replace on ingest.
type Category struct {
	Key       string      // e.g. "ptp-practitioner"
	Kind      DatasetKind // table family
	Partition string      // provider_type / service_type value; "" for AOC (single global partition)
	PageURL   string      // CMS landing page to scrape for artifacts
	Keywords  []string    // case-insensitive filter over anchor href+text
}

// AllCategories lists the supported NCCI dataset categories in canonical order.
// PageURLs may be overridden per category via the YAML config file.
var AllCategories = []Category{
	{
		Key:       "ptp-practitioner",
		Kind:      KindPTP,
		Partition: "practitioner",
		PageURL:   "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-procedure-procedure-ptp-edits",
		Keywords:  []string{"ptp", "procedure-to-procedure", "practitioner"},
	},
	{
		Key:       "ptp-hospital",
		Kind:      KindPTP,
		Partition: "hospital",
		PageURL:   "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-procedure-procedure-ptp-edits",
		Keywords:  []string{"ptp", "procedure-to-procedure", "hospital", "outpatient"},
	},
	{
		Key:       "mue-practitioner",
		Kind:      KindMUE,
		Partition: "practitioner",
		PageURL:   "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-medically-unlikely-edits",
		Keywords:  []string{"mue", "medically unlikely", "practitioner"},
	},
	{
		Key:       "mue-hospital",
		Kind:      KindMUE,
		Partition: "hospital",
		PageURL:   "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-medically-unlikely-edits",
		Keywords:  []string{"mue", "medically unlikely", "hospital", "outpatient", "facility"},
	},
	{
		Key:       "mue-dme",
		Kind:      KindMUE,
		Partition: "dme",
		PageURL:   "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-medically-unlikely-edits",
		Keywords:  []string{"mue", "medically unlikely", "dme", "supplier"},
	},
	{
		Key:       "aoc",
		Kind:      KindAOC,
		Partition: "",
		PageURL:   "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-add-code-edits",
		Keywords:  []string{"add-on", "addon", "aoc"},
	},
}

// CategoryByKey returns the Category for the given key, or ok=false.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range AllCategories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryKeys returns the keys of all categories in canonical order.
func CategoryKeys() []string {
	keys := make([]string, len(AllCategories))
	for i, c := range AllCategories {
		keys[i] = c.Key
	}
	return keys
}
