package main

import (
	"fmt"

	"github.com/sanity-io/litter"

	"github.com/kevinxiao27/inkdoc/doc"
	"github.com/kevinxiao27/inkdoc/merge"
	"github.com/kevinxiao27/inkdoc/ol"
)

func main() {
	litter.Config.HidePrivateFields = false
	alice := doc.NewEditor("alice", doc.New(1000, 1500))
	bob := doc.NewEditor("bob", doc.New(1000, 1500))

	alice.Add("M 10 10 L 90 90")
	alice.Add("M 10 90 L 90 10")
	bob.Add("M 50 0 L 50 100")

	cross := alice.Snapshot().Strokes()[0].UID
	bob.Erase([]string{cross})
	bob.Apply(ol.Op{Type: ol.Mutate, Pairs: []ol.Pair{{
		OriginUID: alice.Snapshot().Strokes()[1].UID,
		PathData:  "M 10 90 L 50 50",
	}}})

	ab := merge.Merge(alice.Snapshot(), bob.Snapshot())
	ba := merge.Merge(bob.Snapshot(), alice.Snapshot())
	fmt.Printf("Result: %s\n", litter.Sdump(ab.Values()))

	if ab.Equal(ba, func(a, b doc.Item) bool { return a == b }) {
		fmt.Println("Merge order does not matter")
	} else {
		fmt.Println("Merge order changed the result")
	}

	fmt.Println("Bob's log:")
	litter.Dump(bob.Log().Entries())
}
