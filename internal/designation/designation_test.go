package designation

import "testing"

func TestShouldDesignate(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		siblings  int64
		want      bool
	}{
		{"first child always designated", false, 0, true},
		{"first child requested", true, 0, true},
		{"later child not requested", false, 3, false},
		{"later child requested", true, 3, true},
	}

	for _, tt := range tests {
		if got := ShouldDesignate(tt.requested, tt.siblings); got != tt.want {
			t.Fatalf("%s: ShouldDesignate(%v, %d) = %v, want %v", tt.name, tt.requested, tt.siblings, got, tt.want)
		}
	}
}

func TestRemoveChildAction(t *testing.T) {
	tests := []struct {
		name          string
		protectLast   bool
		wasDesignated bool
		siblings      int64
		want          removalAction
	}{
		{"last address cannot be deleted", true, true, 1, removalDenied},
		{"last address protected even if not default", true, false, 1, removalDenied},
		{"default address with siblings promotes one", true, true, 3, removalPromote},
		{"non-default address deletes plainly", true, false, 3, removalPlain},
		{"last primary image deletes plainly", false, true, 1, removalPlain},
		{"primary image with siblings promotes one", false, true, 2, removalPromote},
		{"secondary image deletes plainly", false, false, 2, removalPlain},
	}

	for _, tt := range tests {
		if got := removeChildAction(tt.protectLast, tt.wasDesignated, tt.siblings); got != tt.want {
			t.Fatalf("%s: removeChildAction(%v, %v, %d) = %v, want %v", tt.name, tt.protectLast, tt.wasDesignated, tt.siblings, got, tt.want)
		}
	}
}

func TestRelationDefinitions(t *testing.T) {
	if !Addresses.ProtectLast {
		t.Fatal("expected the address relation to protect its last entry")
	}
	if ProductImages.ProtectLast {
		t.Fatal("expected product images to allow deleting the last entry")
	}
	if Addresses.FlagField != "isDefault" || ProductImages.FlagField != "isPrimary" {
		t.Fatalf("unexpected flag fields: %q %q", Addresses.FlagField, ProductImages.FlagField)
	}
}
