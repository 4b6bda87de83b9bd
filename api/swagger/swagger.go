package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Workshop API",
        "description": "Garment workshop backend: batch lifecycle, employee registry, spreadsheet sync",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Gateway token exchange"},
        {"name": "Employees", "description": "Employee registry and approvals"},
        {"name": "Batches", "description": "Batch lifecycle"},
        {"name": "Remakes", "description": "Equipment repair requests"},
        {"name": "Payments", "description": "Compensation ledger"},
        {"name": "Sheets", "description": "Spreadsheet sync webhook and resync"},
        {"name": "Exports", "description": "Table downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange gateway key and chat identity for an access token",
                "parameters": [
                    {"name": "X-Gateway-Key", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExchangeTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid gateway key"},
                    "403": {"description": "Registration pending approval"}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List employees",
                "parameters": [
                    {"name": "job", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Employees"],
                "summary": "Submit a registration application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterEmployeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already registered"}
                }
            }
        },
        "/employees/{id}": {
            "get": {
                "tags": ["Employees"],
                "summary": "Get employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}/review": {
            "post": {
                "tags": ["Employees"],
                "summary": "Approve or reject a registration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewEmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List one employee's payments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches": {
            "get": {
                "tags": ["Batches"],
                "summary": "List batches",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "seamstressId", "in": "query", "type": "integer"},
                    {"name": "cutterId", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Batches"],
                "summary": "Register a cut batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/scan": {
            "post": {
                "tags": ["Batches"],
                "summary": "Resolve a scanned QR payload to its batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScanBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Payload carries no batch id"}
                }
            }
        },
        "/batches/{id}": {
            "get": {
                "tags": ["Batches"],
                "summary": "Get batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/take": {
            "post": {
                "tags": ["Batches"],
                "summary": "Claim a batch for sewing",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already taken or illegal transition"}
                }
            }
        },
        "/batches/{id}/finish": {
            "post": {
                "tags": ["Batches"],
                "summary": "Mark sewing complete",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/review": {
            "post": {
                "tags": ["Batches"],
                "summary": "Record the quality verdict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/rework/start": {
            "post": {
                "tags": ["Batches"],
                "summary": "Start reworking a defective batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Rework reserved for the original seamstress"}
                }
            }
        },
        "/batches/{id}/rework/finish": {
            "post": {
                "tags": ["Batches"],
                "summary": "Finish reworking a batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/label": {
            "get": {
                "tags": ["Batches"],
                "summary": "Render the batch label PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PDF label"}
                }
            }
        },
        "/remakes": {
            "get": {
                "tags": ["Remakes"],
                "summary": "List repair requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "applicantId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Remakes"],
                "summary": "File a repair request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRemakeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/remakes/{id}/start": {
            "post": {
                "tags": ["Remakes"],
                "summary": "Take a repair request into work",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/remakes/{id}/finish": {
            "post": {
                "tags": ["Remakes"],
                "summary": "Mark a repair request done",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Record a payout or fine",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sheets/edits": {
            "post": {
                "tags": ["Sheets"],
                "summary": "Apply one spreadsheet edit notification",
                "parameters": [
                    {"name": "X-Gateway-Key", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SheetEditNotification"}}
                ],
                "responses": {
                    "200": {"description": "Applied"},
                    "400": {"description": "Rejected (mass edit, missing row id, bad cell value)"}
                }
            }
        },
        "/sheets/resync": {
            "post": {
                "tags": ["Sheets"],
                "summary": "Re-project store tables onto the spreadsheet",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResyncRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{table}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a table as CSV or XLSX",
                "parameters": [
                    {"name": "table", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "ExchangeTokenRequest": {
            "type": "object",
            "properties": {
                "tgId": {"type": "integer"}
            },
            "required": ["tgId"]
        },
        "RegisterEmployeeRequest": {
            "type": "object",
            "properties": {
                "tgId": {"type": "integer"},
                "name": {"type": "string"},
                "job": {"type": "string", "enum": ["CUTTER", "SEAMSTRESS", "CONTROLLER", "MANAGER"]}
            },
            "required": ["tgId", "name", "job"]
        },
        "ReviewEmployeeRequest": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"}
            }
        },
        "CreateBatchRequest": {
            "type": "object",
            "properties": {
                "projectNm": {"type": "string"},
                "productNm": {"type": "string"},
                "color": {"type": "string"},
                "size": {"type": "string"},
                "quantity": {"type": "integer"},
                "partsCount": {"type": "integer"},
                "type": {"type": "string", "enum": ["REGULAR", "SAMPLE"]}
            },
            "required": ["projectNm", "productNm", "color", "size", "quantity", "partsCount"]
        },
        "ReviewBatchRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["APPROVE", "REJECT", "REMAKE"]}
            },
            "required": ["decision"]
        },
        "ScanBatchRequest": {
            "type": "object",
            "properties": {
                "payload": {"type": "string"}
            },
            "required": ["payload"]
        },
        "CreateRemakeRequest": {
            "type": "object",
            "properties": {
                "equipmentNm": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["equipmentNm", "description"]
        },
        "CreatePaymentRequest": {
            "type": "object",
            "properties": {
                "employeeId": {"type": "integer"},
                "amount": {"type": "integer"},
                "type": {"type": "string", "enum": ["SALARY", "BONUS", "FINE"]}
            },
            "required": ["employeeId", "amount", "type"]
        },
        "SheetEditNotification": {
            "type": "object",
            "properties": {
                "sheet_name": {"type": "string"},
                "row_id": {"type": "string"},
                "num_rows": {"type": "integer"},
                "entire_row": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["sheet_name"]
        },
        "ResyncRequest": {
            "type": "object",
            "properties": {
                "tables": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
