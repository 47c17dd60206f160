package models

import "testing"

func strPtr(s string) *string { return &s }

func TestCompanyPatch_BuildUpdate(t *testing.T) {
	patch := CompanyPatch{
		Phone:   strPtr("123456"),
		Website: strPtr("https://example.com"),
		ColorCode: &ColorCode{
			Primary:   "#112233",
			Secondary: "#445566",
		},
	}

	set := patch.BuildUpdate()

	if len(set) != 3 {
		t.Fatalf("set has %d fields, want 3: %v", len(set), set)
	}
	if set["companyPhone"] != "123456" {
		t.Errorf("companyPhone = %v", set["companyPhone"])
	}
	if set["companyWebsite"] != "https://example.com" {
		t.Errorf("companyWebsite = %v", set["companyWebsite"])
	}
	if _, ok := set["companyEmail"]; ok {
		t.Error("unset fields must not appear in the update")
	}
}

func TestCompanyPatch_BuildUpdate_Empty(t *testing.T) {
	if set := (CompanyPatch{}).BuildUpdate(); len(set) != 0 {
		t.Errorf("empty patch produced fields: %v", set)
	}
}
