package worldstate

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

func buildSampleKB() *worldmodel.KnowledgeBase {
	root := worldmodel.NewNode("world", "root")

	roomA := worldmodel.NewNode("room", "RoomA")
	roomA.SetScalar("clean", false)
	roomB := worldmodel.NewNode("room", "RoomB")
	roomB.SetScalar("clean", true)
	root.AddChild("rooms", roomA)
	root.AddChild("rooms", roomB)

	box1 := worldmodel.NewNode("box", "Box1")
	roomA.AddChild("boxes", box1)

	robot := worldmodel.NewNode("robot", "Robot1")
	robot.SetScalar("battery", 80)
	root.AddChild("robots", robot)

	return worldmodel.New(root)
}

func buildSampleConfig() *semconfig.Config {
	c := semconfig.New()
	c.SemanticMappings = []semconfig.SemanticMapping{
		{
			Kind:          semconfig.MappingAttribute,
			MappedType:    semconfig.MappedPredicate,
			RelatesTo:     "room",
			Name:          "clean",
			PredicateName: "clean",
		},
		{
			Kind:             semconfig.MappingOwnership,
			MappedType:       semconfig.MappedPredicate,
			Owner:            "room",
			Owned:            "box",
			OwnershipRelType: semconfig.RelationshipNested,
			OwnershipAttr:    "boxes",
			PredicateName:    "contains",
		},
	}
	return c
}

func TestInitializeAttributeMapping(t *testing.T) {
	w, err := Initialize(buildSampleKB(), buildSampleConfig())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !w.Holds(domain.Literal{Predicate: "clean", Args: []string{"RoomB"}, Positive: true}) {
		t.Fatal("expected clean(RoomB) to hold")
	}
	if !w.Holds(domain.Literal{Predicate: "clean", Args: []string{"RoomA"}, Positive: false}) {
		t.Fatal("expected clean(RoomA) to not hold (is false)")
	}
}

func TestInitializeOwnershipMapping(t *testing.T) {
	w, err := Initialize(buildSampleKB(), buildSampleConfig())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !w.Holds(domain.Literal{Predicate: "contains", Args: []string{"RoomA", "Box1"}, Positive: true}) {
		t.Fatal("expected contains(RoomA, Box1) to hold")
	}
}

func TestInitializeSkipsRobotSort(t *testing.T) {
	cfg := semconfig.New()
	cfg.SemanticMappings = []semconfig.SemanticMapping{
		{
			Kind:          semconfig.MappingAttribute,
			MappedType:    semconfig.MappedFunction,
			RelatesTo:     "robot",
			Name:          "battery",
			PredicateName: "battery-level",
		},
	}
	w, err := Initialize(buildSampleKB(), cfg)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(w.Facts()) != 0 {
		t.Fatal("expected robot-sorted attribute mapping to be skipped")
	}
}

func TestInitializeFunctionMapping(t *testing.T) {
	cfg := semconfig.New()
	cfg.SemanticMappings = []semconfig.SemanticMapping{
		{
			Kind:          semconfig.MappingAttribute,
			MappedType:    semconfig.MappedFunction,
			RelatesTo:     "box",
			Name:          "weight",
			PredicateName: "weight",
		},
	}
	root := worldmodel.NewNode("world", "root")
	box := worldmodel.NewNode("box", "Box1")
	box.SetScalar("weight", float64(12))
	root.AddChild("boxes", box)

	w, err := Initialize(worldmodel.New(root), cfg)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !w.Holds(domain.Literal{Predicate: "weight", Args: []string{"Box1"}, IsComparison: true, Op: domain.OpEq, Const: 12}) {
		t.Fatal("expected weight(Box1) = 12 to hold")
	}
}
