package analysis

import (
	"testing"

	"github.com/akileshthuniki/preapply/internal/graph"
	"github.com/akileshthuniki/preapply/internal/ingest"
)

func TestSharedResourcesRequiresInDegreeAtLeastTwo(t *testing.T) {
	plan := planWith(
		ingest.NormalizedResource{Address: "aws_vpc.main", Type: "aws_vpc", Action: ingest.ActionUpdate},
		ingest.NormalizedResource{Address: "aws_subnet.a", Type: "aws_subnet", Action: ingest.ActionNoOp},
		ingest.NormalizedResource{Address: "aws_subnet.b", Type: "aws_subnet", Action: ingest.ActionNoOp},
	)
	g := graph.New()
	g.AddNode("aws_vpc.main")
	g.AddNode("aws_subnet.a")
	g.AddNode("aws_subnet.b")
	g.AddEdge("aws_subnet.a", "aws_vpc.main")
	g.AddEdge("aws_subnet.b", "aws_vpc.main")

	out := SharedResources(g, plan, CriticalTypeSet([]string{"aws_vpc"}))
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 shared resource, got %d", len(out))
	}
	if out[0].Address != "aws_vpc.main" || !out[0].IsCritical || out[0].InDegree != 2 {
		t.Fatalf("unexpected shared resource: %+v", out[0])
	}
	if len(out[0].Dependents) != 2 || out[0].Dependents[0] != "aws_subnet.a" {
		t.Fatalf("expected sorted dependents, got %v", out[0].Dependents)
	}
}

func TestSharedResourcesExcludesSingleDependent(t *testing.T) {
	plan := planWith(
		ingest.NormalizedResource{Address: "aws_vpc.main", Type: "aws_vpc", Action: ingest.ActionUpdate},
		ingest.NormalizedResource{Address: "aws_subnet.a", Type: "aws_subnet", Action: ingest.ActionNoOp},
	)
	g := graph.New()
	g.AddNode("aws_vpc.main")
	g.AddNode("aws_subnet.a")
	g.AddEdge("aws_subnet.a", "aws_vpc.main")

	out := SharedResources(g, plan, CriticalTypeSet(nil))
	if len(out) != 0 {
		t.Fatalf("expected no shared resources, got %v", out)
	}
}

func TestSharedResourcesSortedByAddress(t *testing.T) {
	plan := planWith(
		ingest.NormalizedResource{Address: "aws_vpc.z", Type: "aws_vpc", Action: ingest.ActionNoOp},
		ingest.NormalizedResource{Address: "aws_vpc.a", Type: "aws_vpc", Action: ingest.ActionNoOp},
		ingest.NormalizedResource{Address: "aws_subnet.1", Type: "aws_subnet", Action: ingest.ActionNoOp},
		ingest.NormalizedResource{Address: "aws_subnet.2", Type: "aws_subnet", Action: ingest.ActionNoOp},
	)
	g := graph.New()
	for _, addr := range []string{"aws_vpc.z", "aws_vpc.a", "aws_subnet.1", "aws_subnet.2"} {
		g.AddNode(addr)
	}
	g.AddEdge("aws_subnet.1", "aws_vpc.z")
	g.AddEdge("aws_subnet.2", "aws_vpc.z")
	g.AddEdge("aws_subnet.1", "aws_vpc.a")
	g.AddEdge("aws_subnet.2", "aws_vpc.a")

	out := SharedResources(g, plan, CriticalTypeSet(nil))
	if len(out) != 2 || out[0].Address != "aws_vpc.a" || out[1].Address != "aws_vpc.z" {
		t.Fatalf("expected sorted [aws_vpc.a, aws_vpc.z], got %v", out)
	}
}
