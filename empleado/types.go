package empleado

// Estado is an expense approval state as the backend reports it.
type Estado struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
	Color  string `json:"color"`
}

// Approval state codes.
const (
	EstadoPendiente = "pendiente"
	EstadoAprobado  = "aprobado"
	EstadoRechazado = "rechazado"
	EstadoRevision  = "en_revision"
)

// Filtro selects a gasto listing by approval state.
type Filtro string

const (
	FiltroTodos     Filtro = "all"
	FiltroPendiente Filtro = EstadoPendiente
	FiltroAprobado  Filtro = EstadoAprobado
	FiltroRechazado Filtro = EstadoRechazado
)

// Categoria is an expense category.
type Categoria struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Color  string `json:"color,omitempty"`
}

// TipoPago is a payment method.
type TipoPago struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Icono  string `json:"icono,omitempty"`
}

// Gasto is an employee expense record.
type Gasto struct {
	ID                 int       `json:"id"`
	Concepto           string    `json:"concepto"`
	Descripcion        string    `json:"descripcion,omitempty"`
	Monto              float64   `json:"monto"`
	Fecha              string    `json:"fecha"`
	Proveedor          string    `json:"proveedor,omitempty"`
	Ubicacion          string    `json:"ubicacion,omitempty"`
	AdjuntoURL         string    `json:"adjuntoUrl,omitempty"`
	Notas              string    `json:"notas,omitempty"`
	RequiereAprobacion bool      `json:"requiereAprobacion"`
	ComentarioEmpresa  string    `json:"comentarioEmpresa,omitempty"`
	FechaAprobacion    string    `json:"fechaAprobacion,omitempty"`
	CreatedAt          string    `json:"createdAt"`
	Estado             Estado    `json:"estado"`
	Categoria          Categoria `json:"categoria"`
	TipoPago           TipoPago  `json:"tipoPago"`
	AprobadoPor        string    `json:"aprobadoPor,omitempty"`
}

// GastoData is the expense-creation payload.
type GastoData struct {
	CategoriaID int     `json:"categoria_id" validate:"required"`
	TipoPagoID  int     `json:"tipo_pago_id" validate:"required"`
	Concepto    string  `json:"concepto" validate:"required"`
	Descripcion string  `json:"descripcion,omitempty"`
	Monto       float64 `json:"monto" validate:"required,gt=0"`
	Fecha       string  `json:"fecha" validate:"required"`
	Proveedor   string  `json:"proveedor,omitempty"`
	Ubicacion   string  `json:"ubicacion,omitempty"`
	AdjuntoURL  string  `json:"adjunto_url,omitempty"`
}

// GastoCreado is the backend's acknowledgment of a created expense.
type GastoCreado struct {
	ID                 int     `json:"id"`
	Concepto           string  `json:"concepto"`
	Monto              float64 `json:"monto"`
	Fecha              string  `json:"fecha"`
	Estado             string  `json:"estado"`
	RequiereAprobacion bool    `json:"requiereAprobacion"`
}

// EmpresaRef identifies the company an employee belongs to.
type EmpresaRef struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}

// GastoReciente is the trimmed expense row embedded in the dashboard.
type GastoReciente struct {
	Concepto string  `json:"concepto"`
	Monto    float64 `json:"monto"`
	Fecha    string  `json:"fecha"`
	Estado   struct {
		Nombre string `json:"nombre"`
		Color  string `json:"color"`
	} `json:"estado"`
}

// Dashboard is the employee dashboard summary.
type Dashboard struct {
	GastosPendientes         int             `json:"gastosPendientes"`
	GastosAprobados          int             `json:"gastosAprobados"`
	GastosRechazados         int             `json:"gastosRechazados"`
	TotalGastado             float64         `json:"totalGastado"`
	TotalPendienteAprobacion float64         `json:"totalPendienteAprobacion"`
	Empresa                  *EmpresaRef     `json:"empresa,omitempty"`
	GastosRecientes          []GastoReciente `json:"gastosRecientes"`
}

// hasContent reports whether the dashboard carries anything worth caching.
// An all-zero dashboard is indistinguishable from a failed aggregation, so it
// is never written through.
func (d Dashboard) hasContent() bool {
	return d.GastosPendientes > 0 || d.GastosAprobados > 0 || d.GastosRechazados > 0 ||
		d.TotalGastado > 0 || len(d.GastosRecientes) > 0
}

// Empresa is the company record linked to the employee.
type Empresa struct {
	ID       int    `json:"id"`
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Aprobacion is one row of the approval history.
type Aprobacion struct {
	GastoID         int     `json:"gastoId"`
	Concepto        string  `json:"concepto"`
	Monto           float64 `json:"monto"`
	FechaAprobacion string  `json:"fechaAprobacion"`
	Estado          Estado  `json:"estado"`
	AprobadoPor     string  `json:"aprobadoPor,omitempty"`
	Comentarios     string  `json:"comentarios,omitempty"`
}

// Estadisticas is the locally computed expense summary.
type Estadisticas struct {
	TotalGastos          int
	TotalAprobados       int
	TotalRechazados      int
	TotalPendientes      int
	PorcentajeAprobacion float64
}

// EstadoColor maps an approval state code to its display color.
func EstadoColor(codigo string) string {
	switch codigo {
	case EstadoPendiente:
		return "#FFA500"
	case EstadoAprobado:
		return "#28A745"
	case EstadoRechazado:
		return "#DC3545"
	case EstadoRevision:
		return "#17A2B8"
	default:
		return "#6C757D"
	}
}

// EstadoIcon maps an approval state code to its display icon name.
func EstadoIcon(codigo string) string {
	switch codigo {
	case EstadoPendiente:
		return "time-outline"
	case EstadoAprobado:
		return "checkmark-circle"
	case EstadoRechazado:
		return "close-circle"
	case EstadoRevision:
		return "eye-outline"
	default:
		return "help-circle-outline"
	}
}

// Static fallbacks served when the catalog endpoints are unavailable. The IDs
// mirror the backend seed data.
var fallbackCategorias = []Categoria{
	{ID: 7, Nombre: "Alimentación", Color: "#FF6B6B"},
	{ID: 8, Nombre: "Transporte", Color: "#4ECDC4"},
	{ID: 11, Nombre: "Entretenimiento", Color: "#FFEAA7"},
	{ID: 12, Nombre: "Compras", Color: "#DDA0DD"},
	{ID: 15, Nombre: "Otros Gastos", Color: "#6C757D"},
}

var fallbackTiposPago = []TipoPago{
	{ID: 1, Nombre: "Efectivo", Icono: "cash"},
	{ID: 2, Nombre: "Tarjeta de Débito", Icono: "card"},
	{ID: 3, Nombre: "Tarjeta de Crédito", Icono: "card-outline"},
	{ID: 4, Nombre: "Transferencia", Icono: "swap-horizontal"},
}
