package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Storage         Category = "Storage"
	Mongo           Category = "Mongo"
	RabbitMQ        Category = "RabbitMQ"
	Websocket       Category = "Websocket"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
	Tracing         Category = "Tracing"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Storage
	TableRead   SubCategory = "TableRead"
	TableWrite  SubCategory = "TableWrite"
	AuditAppend SubCategory = "AuditAppend"
	QRGenerate  SubCategory = "QRGenerate"

	// Domain
	Signup     SubCategory = "Signup"
	Login      SubCategory = "Login"
	Submit     SubCategory = "Submit"
	Transition SubCategory = "Transition"
	Publish    SubCategory = "Publish"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestID    ExtraKey = "RequestId"
	ErrorMessage ExtraKey = "ErrorMessage"
	DocumentID   ExtraKey = "DocumentId"
	Department   ExtraKey = "Department"
	Email        ExtraKey = "Email"
	Action       ExtraKey = "Action"
	File         ExtraKey = "File"
	ClientID     ExtraKey = "ClientId"
	Place        ExtraKey = "Place"
	Database     ExtraKey = "Database"
)
