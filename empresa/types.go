package empresa

// Empleado is an employee record as the company sees it. Password is only set
// on creation and never echoed back.
type Empleado struct {
	ID                int     `json:"id,omitempty"`
	Username          string  `json:"username" validate:"required,min=3"`
	Email             string  `json:"email" validate:"required,email"`
	Password          string  `json:"password,omitempty"`
	FirstName         string  `json:"firstName,omitempty"`
	LastName          string  `json:"lastName,omitempty"`
	PhoneNumber       string  `json:"phoneNumber,omitempty"`
	Puesto            string  `json:"puesto,omitempty"`
	Sueldo            float64 `json:"sueldo,omitempty"`
	FechaContratacion string  `json:"fechaContratacion,omitempty"`
	Notas             string  `json:"notas,omitempty"`
	Active            bool    `json:"isActive,omitempty"`
	CreatedAt         string  `json:"createdAt,omitempty"`
}

// EmpleadoRef identifies the submitting employee on a pending expense.
type EmpleadoRef struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// GastoPendiente is an expense awaiting an approval decision.
type GastoPendiente struct {
	ID          int         `json:"id"`
	Concepto    string      `json:"concepto"`
	Descripcion string      `json:"descripcion,omitempty"`
	Monto       float64     `json:"monto"`
	Fecha       string      `json:"fecha"`
	Proveedor   string      `json:"proveedor,omitempty"`
	Ubicacion   string      `json:"ubicacion,omitempty"`
	AdjuntoURL  string      `json:"adjuntoUrl,omitempty"`
	Notas       string      `json:"notas,omitempty"`
	CreatedAt   string      `json:"createdAt"`
	Empleado    EmpleadoRef `json:"empleado"`
	Categoria   struct {
		Nombre string `json:"nombre"`
		Color  string `json:"color,omitempty"`
	} `json:"categoria"`
	TipoPago struct {
		Nombre string `json:"nombre"`
	} `json:"tipoPago"`
}

// GastosPorEmpleado is one per-employee row of the company dashboard.
type GastosPorEmpleado struct {
	Empleado         string `json:"empleado"`
	GastosAprobados  int    `json:"gastosAprobados"`
	GastosPendientes int    `json:"gastosPendientes"`
}

// Dashboard is the company dashboard summary.
type Dashboard struct {
	GastosPendientes  int                 `json:"gastosPendientes"`
	TotalEmpleados    int                 `json:"totalEmpleados"`
	GastosPorEmpleado []GastosPorEmpleado `json:"gastosPorEmpleado"`
}

func (d Dashboard) hasContent() bool {
	return d.GastosPendientes > 0 || d.TotalEmpleados > 0 || len(d.GastosPorEmpleado) > 0
}
