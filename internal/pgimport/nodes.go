package pgimport

import "encoding/json"

// JSON shapes of the libpg_query parse tree, limited to the nodes the
// importer reads. Absent keys decode to zero values, and libpg_query
// omits zero-valued fields, so an integer constant 0 arrives as "ival": {}.

type parseResult struct {
	Stmts []rawStmt `json:"stmts"`
}

type rawStmt struct {
	Stmt     map[string]json.RawMessage `json:"stmt"`
	Location int                        `json:"stmt_location"`
	Len      int                        `json:"stmt_len"`
}

type rangeVar struct {
	Schemaname string `json:"schemaname"`
	Relname    string `json:"relname"`
}

type stringNode struct {
	String *struct {
		Sval string `json:"sval"`
	} `json:"String"`
}

func (n stringNode) value() string {
	if n.String == nil {
		return ""
	}
	return n.String.Sval
}

func stringValues(nodes []stringNode) []string {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.value()
	}
	return out
}

type typeName struct {
	Names       []stringNode      `json:"names"`
	Typmods     []exprNode        `json:"typmods"`
	ArrayBounds []json.RawMessage `json:"arrayBounds"`
	Location    int               `json:"location"`
}

type exprNode struct {
	AConst           *aConst           `json:"A_Const"`
	TypeCast         *typeCast         `json:"TypeCast"`
	SQLValueFunction *sqlValueFunction `json:"SQLValueFunction"`
	FuncCall         *funcCall         `json:"FuncCall"`
}

type aConst struct {
	Ival *struct {
		Ival int64 `json:"ival"`
	} `json:"ival"`
	Fval *struct {
		Fval string `json:"fval"`
	} `json:"fval"`
	Sval *struct {
		Sval string `json:"sval"`
	} `json:"sval"`
	Boolval *struct {
		Boolval bool `json:"boolval"`
	} `json:"boolval"`
	Isnull   bool `json:"isnull"`
	Location int  `json:"location"`
}

type typeCast struct {
	Arg      *exprNode `json:"arg"`
	TypeName typeName  `json:"typeName"`
}

type sqlValueFunction struct {
	Op string `json:"op"`
}

type funcCall struct {
	Funcname []stringNode `json:"funcname"`
	Args     []exprNode   `json:"args"`
	Location int          `json:"location"`
}

type constraint struct {
	Contype     string       `json:"contype"`
	Conname     string       `json:"conname"`
	RawExpr     *exprNode    `json:"raw_expr"`
	Keys        []stringNode `json:"keys"`
	Pktable     *rangeVar    `json:"pktable"`
	FkAttrs     []stringNode `json:"fk_attrs"`
	PkAttrs     []stringNode `json:"pk_attrs"`
	FkUpdAction string       `json:"fk_upd_action"`
	FkDelAction string       `json:"fk_del_action"`
	Location    int          `json:"location"`
}

type columnDef struct {
	Colname     string     `json:"colname"`
	TypeName    typeName   `json:"typeName"`
	Constraints []tableElt `json:"constraints"`
	RawDefault  *exprNode  `json:"raw_default"`
	Location    int        `json:"location"`
}

// tableElt is a table element or an alter table definition: a column or a
// constraint.
type tableElt struct {
	ColumnDef  *columnDef  `json:"ColumnDef"`
	Constraint *constraint `json:"Constraint"`
}

type createStmt struct {
	Relation  rangeVar   `json:"relation"`
	TableElts []tableElt `json:"tableElts"`
}

type alterTableStmt struct {
	Relation rangeVar `json:"relation"`
	Cmds     []struct {
		AlterTableCmd *alterTableCmd `json:"AlterTableCmd"`
	} `json:"cmds"`
}

type alterTableCmd struct {
	Subtype string    `json:"subtype"`
	Def     *tableElt `json:"def"`
}

type indexStmt struct {
	Idxname     string   `json:"idxname"`
	Relation    rangeVar `json:"relation"`
	IndexParams []struct {
		IndexElem *struct {
			Name string `json:"name"`
		} `json:"IndexElem"`
	} `json:"indexParams"`
	Unique bool `json:"unique"`
}
