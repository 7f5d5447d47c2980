// Package designation enforces the "at most one flagged child per parent"
// rule shared by default addresses (one default per user) and product images
// (one primary per product). Both call sites used to carry their own copy of
// the flag juggling; this is the single parameterized version.
//
// Every operation expects to run inside the caller's transaction: the
// clear-then-set sequence keeps concurrent readers from ever seeing two
// flagged children, but only the surrounding session makes it atomic.
//
// ProtectLast is checked against a sibling count read inside the caller's
// transaction. Two transactions deleting different children of the same
// parent do not conflict on any document, so they can both pass the count
// check and leave the parent empty. Like the promotion pick below, this is a
// known, accepted looseness.
package designation

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Relation describes one parent/child/flag triple, e.g.
// {Collection: "addresses", ParentField: "userId", FlagField: "isDefault"}.
type Relation struct {
	Collection  string
	ParentField string
	FlagField   string
	// ProtectLast forbids deleting a parent's only child. The address
	// relation sets this so a user is never left address-less.
	ProtectLast bool
}

var (
	Addresses = Relation{
		Collection:  "addresses",
		ParentField: "userId",
		FlagField:   "isDefault",
		ProtectLast: true,
	}
	ProductImages = Relation{
		Collection:  "product_images",
		ParentField: "productId",
		FlagField:   "isPrimary",
	}
)

type NotFoundError struct {
	Collection string
	ChildID    primitive.ObjectID
}

func (e NotFoundError) Error() string {
	return e.Collection + " entry not found: " + e.ChildID.Hex()
}

type LastItemError struct {
	Collection string
	ParentID   primitive.ObjectID
}

func (e LastItemError) Error() string {
	return "cannot remove the last " + e.Collection + " entry"
}

// ShouldDesignate decides whether a newly inserted child takes the flag: when
// the caller asked for it, or when it is the parent's first child (a parent
// with children always has exactly one designated).
func ShouldDesignate(requested bool, existingSiblings int64) bool {
	return requested || existingSiblings == 0
}

// removalAction is what RemoveChild has to do once the child and its sibling
// count are known.
type removalAction int

const (
	removalDenied  removalAction = iota // ProtectLast and this is the only child
	removalPlain                        // delete, no flag to maintain
	removalPromote                      // delete, then designate a surviving sibling
)

// removeChildAction decides the removal outcome: ProtectLast relations refuse
// to delete the only child; removing the designated child promotes a sibling
// when one survives; everything else is a plain delete.
func removeChildAction(protectLast, wasDesignated bool, siblings int64) removalAction {
	if protectLast && siblings <= 1 {
		return removalDenied
	}
	if wasDesignated && siblings > 1 {
		return removalPromote
	}
	return removalPlain
}

// CountChildren reports how many children the parent currently has.
func (r Relation) CountChildren(ctx context.Context, db *mongo.Database, parentID primitive.ObjectID) (int64, error) {
	return db.Collection(r.Collection).CountDocuments(ctx, bson.M{r.ParentField: parentID})
}

// SetDesignated moves the flag to childID: clear on every sibling first, then
// set on the child. Clear-then-set keeps a second flagged child from ever
// being visible; the zero-flag window in between is closed by the caller's
// transaction.
func (r Relation) SetDesignated(ctx context.Context, db *mongo.Database, parentID, childID primitive.ObjectID) error {
	coll := db.Collection(r.Collection)

	err := coll.FindOne(ctx, bson.M{
		"_id":         childID,
		r.ParentField: parentID,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return NotFoundError{Collection: r.Collection, ChildID: childID}
	}
	if err != nil {
		return err
	}

	_, err = coll.UpdateMany(ctx, bson.M{
		r.ParentField: parentID,
		"_id":         bson.M{"$ne": childID},
	}, bson.M{
		"$set": bson.M{r.FlagField: false},
	})
	if err != nil {
		return err
	}

	_, err = coll.UpdateOne(ctx, bson.M{"_id": childID}, bson.M{
		"$set": bson.M{r.FlagField: true},
	})
	return err
}

// InsertChild inserts doc as a child of parentID, deciding and setting the
// flag field itself. The caller builds the document without the flag and
// learns from the return value whether the new child became designated.
func (r Relation) InsertChild(ctx context.Context, db *mongo.Database, parentID primitive.ObjectID, doc bson.M, requestedDesignated bool) (bool, error) {
	coll := db.Collection(r.Collection)

	siblings, err := r.CountChildren(ctx, db, parentID)
	if err != nil {
		return false, err
	}

	designated := ShouldDesignate(requestedDesignated, siblings)
	if designated && siblings > 0 {
		_, err = coll.UpdateMany(ctx, bson.M{r.ParentField: parentID}, bson.M{
			"$set": bson.M{r.FlagField: false},
		})
		if err != nil {
			return false, err
		}
	}

	doc[r.ParentField] = parentID
	doc[r.FlagField] = designated
	_, err = coll.InsertOne(ctx, doc)
	return designated, err
}

// RemoveChild deletes a child. Removing the designated child promotes an
// arbitrary surviving sibling (whichever the store returns first; the pick is
// deliberately unspecified). ProtectLast relations refuse to delete the only
// child.
func (r Relation) RemoveChild(ctx context.Context, db *mongo.Database, parentID, childID primitive.ObjectID) error {
	coll := db.Collection(r.Collection)

	var child bson.M
	err := coll.FindOne(ctx, bson.M{
		"_id":         childID,
		r.ParentField: parentID,
	}).Decode(&child)
	if err == mongo.ErrNoDocuments {
		return NotFoundError{Collection: r.Collection, ChildID: childID}
	}
	if err != nil {
		return err
	}

	siblings, err := r.CountChildren(ctx, db, parentID)
	if err != nil {
		return err
	}

	wasDesignated, _ := child[r.FlagField].(bool)

	action := removeChildAction(r.ProtectLast, wasDesignated, siblings)
	if action == removalDenied {
		return LastItemError{Collection: r.Collection, ParentID: parentID}
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": childID}); err != nil {
		return err
	}

	if action == removalPromote {
		var successor bson.M
		err := coll.FindOne(ctx, bson.M{r.ParentField: parentID}).Decode(&successor)
		if err != nil {
			return err
		}
		_, err = coll.UpdateOne(ctx, bson.M{"_id": successor["_id"]}, bson.M{
			"$set": bson.M{r.FlagField: true},
		})
		if err != nil {
			return err
		}
	}

	return nil
}
