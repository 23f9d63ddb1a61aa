// Package analysis implements the classifier and aggregator stage: nine
// analysis kinds sharing one segmentation/feature/statistics pipeline, each
// supplying its own acceptance predicate and labeling rule.
package analysis

// Kind names one analysis variant.
type Kind string

const (
	KindPorosity   Kind = "porosity"
	KindPhases     Kind = "phases"
	KindInclusions Kind = "inclusions"
	KindGrainSize  Kind = "grain_size"
	KindDendritic  Kind = "dendritic"
	KindParticles  Kind = "particles"
	KindNodularity Kind = "nodularity"
	KindFlakes     Kind = "flakes"
	KindCoating    Kind = "coating"
)

// Kinds returns every supported analysis kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindPorosity, KindPhases, KindInclusions,
		KindGrainSize, KindDendritic, KindParticles,
		KindNodularity, KindFlakes, KindCoating,
	}
}

// Label tags one accepted feature with its classified type.
type Label string

const (
	LabelPore      Label = "pore"
	LabelInclusion Label = "inclusion"
	LabelGrain     Label = "grain"
	LabelParticle  Label = "particle"
	LabelNodule    Label = "nodule"
	LabelFlake     Label = "flake"
	LabelSegment   Label = "segment"
	LabelCoating   Label = "coating"

	// Flake morphology types per the ASTM A247 length-band convention.
	LabelTypeA Label = "Type A"
	LabelTypeB Label = "Type B"
	LabelTypeC Label = "Type C"
	LabelTypeD Label = "Type D"
	LabelTypeE Label = "Type E"
)
