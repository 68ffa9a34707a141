package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleSuperAdmin  Role = "super_admin"
	RoleBranchAdmin Role = "branch_admin"

	LedgerIncome  LedgerKind = "income"
	LedgerExpense LedgerKind = "expense"

	EmployeeActive   EmployeeStatus = "ACTIVE"
	EmployeeResigned EmployeeStatus = "RESIGNED"

	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceAbsent  AttendanceStatus = "ABSENT"

	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"

	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketFixed      TicketStatus = "FIXED"
	TicketClosed     TicketStatus = "CLOSED"

	CouponActive  CouponStatus = "ACTIVE"
	CouponUsed    CouponStatus = "USED"
	CouponExpired CouponStatus = "EXPIRED"

	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"

	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type Role string
type LedgerKind string
type EmployeeStatus string
type AttendanceStatus string
type LeaveStatus string
type TicketStatus string
type CouponStatus string
type DiscountType string
type NotificationType string

// IsResolved reports whether a ticket status carries a resolution timestamp.
func (s TicketStatus) IsResolved() bool {
	return s == TicketFixed || s == TicketClosed
}

type Branch struct {
	ID        int64
	Slug      string
	Name      string
	Address   string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type AdminUser struct {
	ID           int64
	BranchID     *int64
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type LedgerEntry struct {
	ID         int64
	BranchID   int64
	Kind       LedgerKind
	Title      string
	Amount     decimal.Decimal
	CategoryID *int64
	Category   string
	Date       time.Time
	Note       string
	CreatedBy  *int64
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

type ExpenseCategory struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Employee struct {
	ID        int64
	BranchID  int64
	Name      string
	Phone     string
	Position  string
	Status    EmployeeStatus
	Salary    decimal.Decimal
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type AttendanceRecord struct {
	ID            int64
	BranchID      int64
	EmployeeID    int64
	EmployeeName  string
	Date          time.Time
	CheckIn       *time.Time
	CheckOut      *time.Time
	Status        AttendanceStatus
	HoursWorked   float64
	OvertimeHours float64
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

type LeaveRequest struct {
	ID         int64
	BranchID   int64
	EmployeeID int64
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     LeaveStatus
	ApproverID *int64
	DecidedAt  *time.Time
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

type PayrollRecord struct {
	ID         int64
	BranchID   int64
	EmployeeID int64
	Month      int
	Year       int
	BaseSalary decimal.Decimal
	Overtime   decimal.Decimal
	Deductions decimal.Decimal
	TotalPay   decimal.Decimal
	PaidAt     *time.Time
	CreatedAt  time.Time
}

type ServiceTicket struct {
	ID         int64
	BranchID   int64
	Title      string
	Detail     string
	Priority   string
	Status     TicketStatus
	ReportedBy *int64
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Comments   []TicketComment
	DeletedAt  *time.Time
}

type TicketComment struct {
	ID        int64
	TicketID  int64
	AuthorID  *int64
	Author    string
	Body      string
	CreatedAt time.Time
}

type Notification struct {
	ID        int64
	BranchID  int64
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
	DeletedAt *time.Time
}

type Customer struct {
	ID        int64
	Name      string
	Phone     string
	CreatedAt time.Time
	DeletedAt *time.Time
}

type CustomerVehicle struct {
	ID         int64
	CustomerID int64
	Plate      string
	Brand      string
	Model      string
	Color      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

type PointTransaction struct {
	ID         int64
	CustomerID int64
	BranchID   *int64
	Points     int
	Note       string
	CreatedAt  time.Time
}

type CouponTemplate struct {
	ID            int64
	Name          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	ValidDays     int
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

type CustomerCoupon struct {
	ID         int64
	TemplateID int64
	CustomerID int64
	Code       string
	Status     CouponStatus
	ExpiresAt  time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
	Template   *CouponTemplate
}

type SiteConfig struct {
	ID           int64
	SiteName     string
	Tagline      string
	ContactEmail string
	ContactPhone string
	Address      string
	UpdatedAt    time.Time
}

type RoiConfig struct {
	ID               int64
	InvestmentAmount decimal.Decimal
	MonthlyTarget    decimal.Decimal
	BreakEvenMonths  int
	UpdatedAt        time.Time
}

type BranchTheme struct {
	BranchID       int64
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
	LogoURL        string
	UpdatedAt      time.Time
}

type Banner struct {
	ID        int64
	BranchID  *int64
	Title     string
	ImageURL  string
	LinkURL   string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	DeletedAt *time.Time
}
