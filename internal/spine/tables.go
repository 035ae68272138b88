package spine

// Index maps names to their declaration position. The first declaration of
// a duplicated name wins.
type Index map[string]int

func newIndex(n int, name func(int) string) Index {
	idx := make(Index, n)
	for i := range n {
		if _, dup := idx[name(i)]; !dup {
			idx[name(i)] = i
		}
	}
	return idx
}

// Lookup returns the position of name and whether it was declared.
func (idx Index) Lookup(name string) (int, bool) {
	i, ok := idx[name]
	return i, ok
}

// Or returns the position of name, or fallback when it is not declared.
func (idx Index) Or(name string, fallback int) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return fallback
}

// NameTables resolves cross-references for one document. Build a new value
// for every document.
type NameTables struct {
	Bones     Index
	Slots     Index
	IK        Index
	Transform Index
	Path      Index
	Skins     Index

	// Strings holds the default skin's attachment keys and path values in
	// first-seen order. Other skins, events, and constraint names are not
	// included, so references to them encode as null.
	Strings     []string
	stringIndex Index
}

func NewNameTables(doc *Document) *NameTables {
	t := &NameTables{
		Bones:       newIndex(len(doc.Bones), func(i int) string { return doc.Bones[i].Name }),
		Slots:       newIndex(len(doc.Slots), func(i int) string { return doc.Slots[i].Name }),
		IK:          newIndex(len(doc.IK), func(i int) string { return doc.IK[i].Name }),
		Transform:   newIndex(len(doc.Transform), func(i int) string { return doc.Transform[i].Name }),
		Path:        newIndex(len(doc.Path), func(i int) string { return doc.Path[i].Name }),
		Skins:       newIndex(len(doc.Skins), func(i int) string { return doc.Skins[i].Name }),
		stringIndex: Index{},
	}
	if skin := doc.DefaultSkin(); skin != nil {
		for _, slot := range skin.Slots {
			for _, att := range slot.Attachments {
				t.addString(att.Key)
				if att.Path != nil {
					t.addString(*att.Path)
				}
			}
		}
	}
	return t
}

func (t *NameTables) addString(s string) {
	if _, ok := t.stringIndex[s]; ok {
		return
	}
	t.stringIndex[s] = len(t.Strings)
	t.Strings = append(t.Strings, s)
}

// StringRef returns the string-ref encoding of s: table index + 1, or 0 for
// nil and unknown strings.
func (t *NameTables) StringRef(s *string) uint64 {
	if s == nil {
		return 0
	}
	if i, ok := t.stringIndex[*s]; ok {
		return uint64(i) + 1
	}
	return 0
}

// DefaultSkin returns the skin named "default", or nil.
func (d *Document) DefaultSkin() *Skin {
	for i := range d.Skins {
		if d.Skins[i].Name == "default" {
			return &d.Skins[i]
		}
	}
	return nil
}
