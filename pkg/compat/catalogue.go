// SPDX-License-Identifier: Apache-2.0

// Package compat implements the CompatibilityInstaller: a catalogue of
// Oracle built-in packages/functions and their PostgreSQL equivalents,
// loaded as data and validated against a JSON Schema with
// santhosh-tekuri/jsonschema/v6 before any DDL is executed.
package compat

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/oragres/migrator/pkg/migerr"
)

// SupportTier classifies how faithfully an Oracle built-in can be
// reproduced in PostgreSQL.
type SupportTier string

const (
	TierFull    SupportTier = "FULL"
	TierPartial SupportTier = "PARTIAL"
	TierStub    SupportTier = "STUB"
)

// Entry is one catalogue row: an Oracle built-in and how to install its
// PostgreSQL equivalent.
type Entry struct {
	OraclePackage  string      `json:"oraclePackage"`
	OracleFunction string      `json:"oracleFunction"`
	Tier           SupportTier `json:"tier"`
	InstallDDL     string      `json:"installDdl"`
	Notes          string      `json:"notes"`
}

const catalogueSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["oraclePackage", "oracleFunction", "tier"],
    "properties": {
      "oraclePackage": {"type": "string"},
      "oracleFunction": {"type": "string"},
      "tier": {"enum": ["FULL", "PARTIAL", "STUB"]},
      "installDdl": {"type": "string"},
      "notes": {"type": "string"}
    }
  }
}`

// DefaultCatalogue is the seed set of Oracle built-ins this system knows
// how to approximate.
func DefaultCatalogue() []Entry {
	return []Entry{
		{OracleFunction: "SUBSTR", Tier: TierFull, Notes: "PostgreSQL substr() is positionally compatible"},
		{OracleFunction: "INSTR", Tier: TierFull, Notes: "PostgreSQL position()/strpos() cover the common two-argument form"},
		{OracleFunction: "NVL", Tier: TierFull,
			InstallDDL: `CREATE OR REPLACE FUNCTION oracle_compat.nvl(anyelement, anyelement) RETURNS anyelement LANGUAGE sql AS $$ SELECT coalesce($1, $2) $$`},
		{OracleFunction: "DECODE", Tier: TierFull, Notes: "translated to CASE at the call site; no installable equivalent"},
		{OraclePackage: "DBMS_OUTPUT", OracleFunction: "PUT_LINE", Tier: TierPartial,
			InstallDDL: `CREATE OR REPLACE FUNCTION oracle_compat.dbms_output_put_line(text) RETURNS void LANGUAGE plpgsql AS $$ BEGIN RAISE NOTICE '%', $1; END; $$`,
			Notes:      "routes to NOTICE instead of a client-side output buffer"},
		{OraclePackage: "DBMS_UTILITY", OracleFunction: "FORMAT_ERROR_STACK", Tier: TierPartial,
			Notes: "no single PostgreSQL equivalent; callers should use GET STACKED DIAGNOSTICS"},
		{OraclePackage: "UTL_FILE", OracleFunction: "FOPEN", Tier: TierStub,
			InstallDDL: `CREATE OR REPLACE FUNCTION oracle_compat.utl_file_fopen(text, text, text) RETURNS void LANGUAGE plpgsql AS $$ BEGIN RAISE EXCEPTION 'UTL_FILE.FOPEN has no PostgreSQL equivalent; server-side file I/O is disabled by default'; END; $$`},
		{OraclePackage: "DBMS_LOB", OracleFunction: "GETLENGTH", Tier: TierStub,
			InstallDDL: `CREATE OR REPLACE FUNCTION oracle_compat.dbms_lob_getlength(bytea) RETURNS bigint LANGUAGE sql AS $$ SELECT length($1) $$`,
			Notes:      "correct for bytea/text; no equivalent for BFILE-backed LOBs"},
	}
}

// ValidateCatalogue checks entries against the catalogue JSON Schema.
func ValidateCatalogue(entries []Entry) error {
	doc, err := json.Marshal(entries)
	if err != nil {
		return migerr.Wrap(migerr.KindInternal, "marshaling catalogue for validation", err)
	}

	compiler := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(catalogueSchemaJSON)))
	if err != nil {
		return migerr.Wrap(migerr.KindInternal, "parsing catalogue schema", err)
	}
	if err := compiler.AddResource("catalogue.json", schemaDoc); err != nil {
		return migerr.Wrap(migerr.KindInternal, "registering catalogue schema", err)
	}
	schema, err := compiler.Compile("catalogue.json")
	if err != nil {
		return migerr.Wrap(migerr.KindInternal, "compiling catalogue schema", err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return migerr.Wrap(migerr.KindInternal, "parsing catalogue document", err)
	}
	if err := schema.Validate(instance); err != nil {
		return migerr.Wrap(migerr.KindConfig, "catalogue failed schema validation", err)
	}

	return nil
}
