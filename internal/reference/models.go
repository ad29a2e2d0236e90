package reference

// ModelOption describes one speech model the engine can load.
type ModelOption struct {
	ID     string
	Label  string
	HFID   string
	Caveat string
}

// Model identifiers as the daemon spells them.
const (
	ModelQwen3ASR17B = "qwen3Asr17b"
	ModelQwen3ASR06B = "qwen3Asr06b"
)

// Models is the ordered model table.
var Models = []ModelOption{
	{
		ID:     ModelQwen3ASR17B,
		Label:  "Qwen3-ASR 1.7B",
		HFID:   "Qwen/Qwen3-ASR-1.7B",
		Caveat: "Best accuracy. Needs several GB of memory; the first run downloads the weights.",
	},
	{
		ID:     ModelQwen3ASR06B,
		Label:  "Qwen3-ASR 0.6B",
		HFID:   "Qwen/Qwen3-ASR-0.6B",
		Caveat: "Faster and lighter. May miss rare words and strong accents.",
	},
}

// Caveat returns the caveat for a model id, or "" for unknown ids.
func Caveat(id string) string {
	if m, ok := ModelByID(id); ok {
		return m.Caveat
	}
	return ""
}

// ModelByID looks up a model by identifier.
func ModelByID(id string) (ModelOption, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelOption{}, false
}

// NextModel returns the model id delta steps away from id, wrapping around.
// Unknown ids start from the first entry.
func NextModel(id string, delta int) string {
	idx := 0
	for i, m := range Models {
		if m.ID == id {
			idx = i
			break
		}
	}
	n := len(Models)
	return Models[((idx+delta)%n+n)%n].ID
}
