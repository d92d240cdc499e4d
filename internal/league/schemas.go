package league

const accountSchema = `{"type": "string", "minLength": 1}`

const addressSchema = `{"type": "string", "pattern": "^(account:.+|contract:[0-9]+(,[0-9]+)?|[^:]+)$"}`

const contractAddressSchema = `{
  "type": "object",
  "properties": {
    "index": {"type": "integer", "minimum": 0},
    "subindex": {"type": "integer", "minimum": 0}
  },
  "required": ["index", "subindex"],
  "additionalProperties": false
}`

var setPlayerStatusSchema = `{
  "type": "object",
  "properties": {
    "account": ` + accountSchema + `,
    "status": {"enum": ["Active", "Suspended"]}
  },
  "required": ["account", "status"],
  "additionalProperties": false
}`

var recordResultSchema = `{
  "type": "object",
  "properties": {
    "account": ` + accountSchema + `,
    "outcome": {"enum": ["Win", "Loss"]}
  },
  "required": ["account", "outcome"],
  "additionalProperties": false
}`

var accountParamsSchema = `{
  "type": "object",
  "properties": {"account": ` + accountSchema + `},
  "required": ["account"],
  "additionalProperties": false
}`

var updateAdminSchema = `{
  "type": "object",
  "properties": {"newAdmin": ` + addressSchema + `},
  "required": ["newAdmin"],
  "additionalProperties": false
}`

const setPausedSchema = `{
  "type": "object",
  "properties": {"paused": {"type": "boolean"}},
  "required": ["paused"],
  "additionalProperties": false
}`

const setMetadataURLSchema = `{
  "type": "object",
  "properties": {"url": {"type": "string", "maxLength": 2048}},
  "required": ["url"],
  "additionalProperties": false
}`

const supportsSchema = `{
  "type": "object",
  "properties": {
    "ids": {"type": "array", "items": {"type": "string", "minLength": 1, "maxLength": 255}}
  },
  "required": ["ids"],
  "additionalProperties": false
}`

var setImplementorsSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string", "minLength": 1, "maxLength": 255},
    "implementors": {"type": "array", "items": ` + contractAddressSchema + `}
  },
  "required": ["id", "implementors"],
  "additionalProperties": false
}`
