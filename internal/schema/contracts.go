package schema

// Patterns are spliced into JSON documents, so backslashes are doubled.
const isoDateTimePattern = `^\\d{4}-\\d{2}-\\d{2}T`
const isoDatePattern = `^\\d{4}-\\d{2}-\\d{2}$`

// Upstream payload contracts. These only pin the outer shape; field-level
// variance is resolved by the normalizer.
var (
	RawRecord = mustCompile("raw_record", `{
		"type": "object",
		"properties": {
			"data": {"type": ["object", "null"]}
		}
	}`)

	RawList = mustCompile("raw_list", `{
		"type": ["object", "array"],
		"properties": {
			"data": {"type": ["array", "object", "null"]},
			"records": {"type": ["array", "null"]},
			"meta": {"type": ["object", "null"]}
		}
	}`)

	RawDashboard = mustCompile("raw_dashboard", `{
		"type": "object",
		"properties": {
			"data": {"type": ["object", "null"]},
			"overview": {"type": ["object", "null"]},
			"overview_data": {"type": ["object", "null"]}
		}
	}`)

	RawLogin = mustCompile("raw_login", `{
		"type": "object",
		"properties": {
			"data": {"type": ["object", "null"]},
			"token": {"type": ["string", "null"]},
			"access_token": {"type": ["string", "null"]}
		}
	}`)

	RawReportsSummary = mustCompile("raw_reports_summary", `{
		"type": "object"
	}`)
)

// Canonical record contracts
var (
	IncomingLetter = mustCompile("incoming_letter", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["id", "letter_number", "subject", "sender", "letter_date", "received_date", "category_id", "category",
			"note", "attachment_path", "district", "village", "agenda_number", "disposition_department", "disposition_instruction"],
		"properties": {
			"id": {"type": "integer", "minimum": 0},
			"letter_number": {"type": "string", "minLength": 1},
			"subject": {"type": "string", "minLength": 1},
			"sender": {"type": "string"},
			"letter_date": {"type": "string", "pattern": "`+isoDateTimePattern+`"},
			"received_date": {"type": "string", "pattern": "`+isoDateTimePattern+`"},
			"category_id": {"type": "integer", "minimum": 0},
			"category": {"$ref": "#/definitions/snapshot"},
			"note": {"type": ["string", "null"]},
			"attachment_path": {"type": ["string", "null"]},
			"district": {"type": ["string", "null"]},
			"village": {"type": ["string", "null"]},
			"agenda_number": {"type": ["string", "null"]},
			"disposition_department": {"type": ["string", "null"]},
			"disposition_instruction": {"type": ["string", "null"]},
			"created_at": {"type": ["string", "null"]},
			"updated_at": {"type": ["string", "null"]}
		},
		"definitions": {
			"snapshot": {
				"type": ["object", "null"],
				"additionalProperties": false,
				"required": ["id", "name"],
				"properties": {
					"id": {"type": "integer"},
					"name": {"type": "string"}
				}
			}
		}
	}`)

	OutgoingLetter = mustCompile("outgoing_letter", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["id", "letter_number", "subject", "recipient", "letter_date", "category_id", "category", "note", "attachment_path"],
		"properties": {
			"id": {"type": "integer", "minimum": 0},
			"letter_number": {"type": "string", "minLength": 1},
			"subject": {"type": "string", "minLength": 1},
			"recipient": {"type": "string"},
			"letter_date": {"type": "string", "pattern": "`+isoDatePattern+`"},
			"category_id": {"type": "integer", "minimum": 0},
			"category": {"$ref": "#/definitions/snapshot"},
			"note": {"type": ["string", "null"]},
			"attachment_path": {"type": ["string", "null"]},
			"created_at": {"type": ["string", "null"]},
			"updated_at": {"type": ["string", "null"]}
		},
		"definitions": {
			"snapshot": {
				"type": ["object", "null"],
				"additionalProperties": false,
				"required": ["id", "name"],
				"properties": {
					"id": {"type": "integer"},
					"name": {"type": "string"}
				}
			}
		}
	}`)

	Category = mustCompile("category", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "integer", "minimum": 0},
			"name": {"type": "string", "minLength": 1},
			"description": {"type": ["string", "null"]}
		}
	}`)

	PaginationMeta = mustCompile("pagination_meta", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["current_page", "per_page", "total", "last_page", "from", "to"],
		"properties": {
			"current_page": {"type": "integer", "minimum": 1},
			"per_page": {"type": "integer", "minimum": 1},
			"total": {"type": "integer", "minimum": 0},
			"last_page": {"type": "integer", "minimum": 1},
			"from": {"type": ["integer", "null"], "minimum": 1},
			"to": {"type": ["integer", "null"], "minimum": 0}
		}
	}`)

	DashboardMetrics = mustCompile("dashboard_metrics", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["total_incoming", "total_outgoing", "incoming_this_month", "outgoing_this_month", "chart"],
		"properties": {
			"total_incoming": {"type": "integer", "minimum": 0},
			"total_outgoing": {"type": "integer", "minimum": 0},
			"incoming_this_month": {"type": "integer", "minimum": 0},
			"outgoing_this_month": {"type": "integer", "minimum": 0},
			"chart": {"$ref": "#/definitions/chart"}
		},
		"definitions": {
			"chart": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"additionalProperties": false,
					"required": ["date", "incoming_count", "outgoing_count"],
					"properties": {
						"date": {"type": "string"},
						"incoming_count": {"type": "integer"},
						"outgoing_count": {"type": "integer"}
					}
				}
			}
		}
	}`)

	ReportsSummary = mustCompile("reports_summary", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["summary", "chart"],
		"properties": {
			"summary": {"type": "string"},
			"chart": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"additionalProperties": false,
					"required": ["date", "incoming_count", "outgoing_count"],
					"properties": {
						"date": {"type": "string"},
						"incoming_count": {"type": "integer"},
						"outgoing_count": {"type": "integer"}
					}
				}
			}
		}
	}`)

	User = mustCompile("user", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["id", "name", "email"],
		"properties": {
			"id": {"type": "integer", "minimum": 0},
			"name": {"type": "string"},
			"email": {"type": "string"},
			"role": {"type": "string"}
		}
	}`)
)
