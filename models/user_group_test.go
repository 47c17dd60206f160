package models

import "testing"

func schemaGroup(fields ...GroupField) *UserGroup {
	return &UserGroup{Schema: fields}
}

func TestValidateExtras_RequiredMissing(t *testing.T) {
	group := schemaGroup(GroupField{Name: "department", Type: FieldString, Required: true})

	if _, err := group.ValidateExtras(map[string]interface{}{}); err == nil {
		t.Error("expected error for missing required field")
	}
}

func TestValidateExtras_TypeChecks(t *testing.T) {
	tests := []struct {
		name    string
		field   GroupField
		value   interface{}
		wantErr bool
	}{
		{"string ok", GroupField{Name: "f", Type: FieldString, Required: true}, "x", false},
		{"string wrong", GroupField{Name: "f", Type: FieldString, Required: true}, 42.0, true},
		{"number ok", GroupField{Name: "f", Type: FieldNumber, Required: true}, 42.0, false},
		{"number wrong", GroupField{Name: "f", Type: FieldNumber, Required: true}, "42", true},
		{"boolean ok", GroupField{Name: "f", Type: FieldBoolean, Required: true}, true, false},
		{"date as rfc3339", GroupField{Name: "f", Type: FieldDate, Required: true}, "2024-01-02T00:00:00Z", false},
		{"date not a timestamp", GroupField{Name: "f", Type: FieldDate, Required: true}, "tomorrow", true},
		{"date as number", GroupField{Name: "f", Type: FieldDate, Required: true}, 1704153600.0, true},
		{"array ok", GroupField{Name: "f", Type: FieldArray, Required: true}, []interface{}{"a"}, false},
		{"array wrong", GroupField{Name: "f", Type: FieldArray, Required: true}, "a", true},
		{"object ok", GroupField{Name: "f", Type: FieldObject, Required: true}, map[string]interface{}{"k": "v"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := schemaGroup(tt.field)
			_, err := group.ValidateExtras(map[string]interface{}{"f": tt.value})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExtras err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExtras_DefaultApplied(t *testing.T) {
	group := schemaGroup(GroupField{Name: "region", Type: FieldString, Default: "HQ"})

	extras, err := group.ValidateExtras(map[string]interface{}{})
	if err != nil {
		t.Fatalf("ValidateExtras failed: %v", err)
	}
	if extras["region"] != "HQ" {
		t.Errorf("default not applied: %v", extras["region"])
	}
}

func TestValidateExtras_DropsUnknownFields(t *testing.T) {
	group := schemaGroup(GroupField{Name: "known", Type: FieldString})

	extras, err := group.ValidateExtras(map[string]interface{}{
		"known":   "ok",
		"unknown": "dropped",
	})
	if err != nil {
		t.Fatalf("ValidateExtras failed: %v", err)
	}
	if _, ok := extras["unknown"]; ok {
		t.Error("values outside the schema must be dropped")
	}
	if extras["known"] != "ok" {
		t.Error("schema value missing from result")
	}
}

func TestCanManageUsers(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{AccessAdmin, true},
		{AccessManager, true},
		{AccessTeamLead, false},
		{AccessTeamMember, false},
		{AccessGuest, false},
	}
	for _, tt := range tests {
		group := &UserGroup{AccessLevel: tt.level}
		if got := group.CanManageUsers(); got != tt.want {
			t.Errorf("CanManageUsers(%s) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestScopedUsername(t *testing.T) {
	if got := ScopedUsername("acme", " jdoe "); got != "ACME-jdoe" {
		t.Errorf("ScopedUsername = %q, want %q", got, "ACME-jdoe")
	}
}
