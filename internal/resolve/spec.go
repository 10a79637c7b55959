package resolve

import "github.com/seenimoa/intrinsic/internal/facts"

// Spec is an authored rule for assembling a line item. Rules are values;
// Eval interprets them against a bag.
type Spec interface {
	eval(bag *facts.Bag, req Request) LineItem
}

// Eval interprets a rule.
func Eval(bag *facts.Bag, s Spec, req Request) LineItem {
	if s == nil {
		return LineItem{}
	}
	return s.eval(bag, req.withDefaults())
}

type preferSpec []string

func (p preferSpec) eval(bag *facts.Bag, req Request) LineItem {
	return Resolve(bag, p, req)
}

// Prefer resolves a hierarchical list of synonymous concepts.
func Prefer(concepts ...string) Spec { return preferSpec(concepts) }

type eitherSpec []Spec

func (e eitherSpec) eval(bag *facts.Bag, req Request) LineItem {
	var out LineItem
	for _, s := range e {
		out = prefer(out, s.eval(bag, req))
	}
	return out
}

// Either applies the preference-list semantics across whole rules, which
// lets one list mix taxonomies or units.
func Either(specs ...Spec) Spec { return eitherSpec(specs) }

type totalSpec struct {
	parent      Spec
	children    []Spec
	mustInclude []int
}

func (t totalSpec) eval(bag *facts.Bag, req Request) LineItem {
	var out LineItem
	if t.parent != nil {
		out = t.parent.eval(bag, req)
	}
	if len(t.children) == 0 {
		return out
	}
	ttms := make([]*Point, len(t.children))
	latests := make([]*Point, len(t.children))
	years := make([]*Yearly, len(t.children))
	for i, c := range t.children {
		li := c.eval(bag, req)
		ttms[i], latests[i], years[i] = li.TTM, li.Latest, li.Yearly
	}
	if req.TTM {
		out.TTM = MergeLatest(out.TTM, ttms)
	}
	if req.Latest {
		out.Latest = MergeLatest(out.Latest, latests)
	}
	if req.Yearly {
		out.Yearly = MergeYearly(out.Yearly, years, t.mustInclude...)
	}
	return out
}

// Total prefers the parent aggregate and reconstructs it from the children
// where it is missing. mustInclude lists child indices that must report a
// year before the children's sum is accepted for it.
func Total(parent Spec, children []Spec, mustInclude ...int) Spec {
	return totalSpec{parent: parent, children: children, mustInclude: mustInclude}
}

// Sum adds children with no parent concept.
func Sum(children ...Spec) Spec { return Total(nil, children) }

type unitSpec struct {
	unit string
	s    Spec
}

func (u unitSpec) eval(bag *facts.Bag, req Request) LineItem {
	req.Unit = u.unit
	return u.s.eval(bag, req)
}

// InUnit evaluates a rule in a fixed unit such as "shares".
func InUnit(unit string, s Spec) Spec { return unitSpec{unit: unit, s: s} }

type taxonomySpec struct {
	taxonomy string
	s        Spec
}

func (t taxonomySpec) eval(bag *facts.Bag, req Request) LineItem {
	req.Taxonomy = t.taxonomy
	return t.s.eval(bag, req)
}

// InTaxonomy evaluates a rule against another taxonomy such as dei.
func InTaxonomy(taxonomy string, s Spec) Spec { return taxonomySpec{taxonomy: taxonomy, s: s} }
