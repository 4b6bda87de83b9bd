// Package schema is the single source of truth for which tables are mirrored
// to the spreadsheet, how their columns are titled on the sheet and which
// constraints each column carries. Everything that translates between store
// rows and sheet rows goes through this registry.
package schema

import "github.com/atelier-ops/workshop-api/internal/models"

// TimeLayout is the spreadsheet rendering of timestamps. Seconds are kept
// so a rendered cell parsed back loses nothing the sheet can represent.
const TimeLayout = "02.01.2006 15:04:05"

// Kind drives both value formatting and the data-validation rule applied to a
// sheet column.
type Kind int

const (
	KindInteger Kind = iota
	KindText
	KindDatetime
	KindEnum
)

// Column describes one mirrored column. Label is the header shown on the
// sheet; Name is the store column.
type Column struct {
	Name  string
	Label string
	Kind  Kind
	Enum  []string
}

// Table describes one mirrored table. Columns[0] is always the primary key.
type Table struct {
	Name    string
	Sheet   string
	Columns []Column
}

// PK returns the primary key column.
func (t Table) PK() Column { return t.Columns[0] }

// Headers returns the sheet header row.
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

// Column looks a column up by store name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns store column names in sheet order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

func enumStrings[T ~string](vals ...T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

var (
	Employees = Table{
		Name:  "employees",
		Sheet: "Сотрудники",
		Columns: []Column{
			{Name: "tg_id", Label: "ID сотрудника", Kind: KindInteger},
			{Name: "name", Label: "ФИО", Kind: KindText},
			{Name: "job", Label: "Должность", Kind: KindEnum, Enum: enumStrings(
				models.RoleCutter, models.RoleSeamstress, models.RoleController, models.RoleManager)},
			{Name: "status", Label: "Статус", Kind: KindEnum, Enum: enumStrings(
				models.EmployeePending, models.EmployeeApproved)},
			{Name: "created_at", Label: "Дата создания", Kind: KindDatetime},
		},
	}

	Batches = Table{
		Name:  "batches",
		Sheet: "Пачки",
		Columns: []Column{
			{Name: "batch_id", Label: "ID пачки", Kind: KindInteger},
			{Name: "project_nm", Label: "Наименование проекта", Kind: KindText},
			{Name: "product_nm", Label: "Тип изделия", Kind: KindText},
			{Name: "color", Label: "Цвет", Kind: KindText},
			{Name: "size", Label: "Размер", Kind: KindText},
			{Name: "quantity", Label: "Количество", Kind: KindInteger},
			{Name: "parts_count", Label: "Количество деталей", Kind: KindInteger},
			{Name: "cutter_id", Label: "ID раскройщика", Kind: KindInteger},
			{Name: "seamstress_id", Label: "ID швеи", Kind: KindInteger},
			{Name: "controller_id", Label: "ID контролера", Kind: KindInteger},
			{Name: "status", Label: "Статус", Kind: KindEnum, Enum: enumStrings(models.AllBatchStatuses...)},
			{Name: "type", Label: "Тип", Kind: KindEnum, Enum: enumStrings(
				models.BatchRegular, models.BatchSample)},
			{Name: "created_at", Label: "Дата создания", Kind: KindDatetime},
			{Name: "sew_start_dttm", Label: "Дата начала шитья", Kind: KindDatetime},
			{Name: "sew_end_dttm", Label: "Дата окончания шитья", Kind: KindDatetime},
			{Name: "control_dttm", Label: "Дата контроля", Kind: KindDatetime},
		},
	}

	Remakes = Table{
		Name:  "remakes",
		Sheet: "Ремонты",
		Columns: []Column{
			{Name: "remake_id", Label: "ID ремонта", Kind: KindInteger},
			{Name: "equipment_nm", Label: "Наименование оборудования", Kind: KindText},
			{Name: "description", Label: "Описание", Kind: KindText},
			{Name: "applicant_id", Label: "ID заявителя", Kind: KindInteger},
			{Name: "status", Label: "Статус", Kind: KindEnum, Enum: enumStrings(
				models.RemakeCreated, models.RemakeInProgress, models.RemakeDone)},
			{Name: "created_at", Label: "Дата создания", Kind: KindDatetime},
		},
	}

	Payments = Table{
		Name:  "payments",
		Sheet: "Выплаты",
		Columns: []Column{
			{Name: "payment_id", Label: "ID выплаты", Kind: KindInteger},
			{Name: "employee_id", Label: "ID сотрудника", Kind: KindInteger},
			{Name: "amount", Label: "Сумма", Kind: KindInteger},
			{Name: "type", Label: "Тип", Kind: KindEnum, Enum: enumStrings(
				models.PaymentSalary, models.PaymentBonus, models.PaymentFine)},
			{Name: "payment_date", Label: "Дата выплаты", Kind: KindDatetime},
		},
	}
)

// Tables lists every mirrored table. The set is closed: table names arriving
// from outside (webhooks, exports) are resolved against it and anything else
// is rejected.
var Tables = []Table{Employees, Batches, Remakes, Payments}

// ByName resolves a store table name.
func ByName(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// BySheet resolves a sheet title back to its table.
func BySheet(sheet string) (Table, bool) {
	for _, t := range Tables {
		if t.Sheet == sheet {
			return t, true
		}
	}
	return Table{}, false
}
