// Package logkey keeps the structured-log attribute names in one place so
// log lines stay greppable across the service.
package logkey

const (
	TraceID    = "trace_id"
	ERROR      = "error"
	OrderID    = "order_id"
	CustomerID = "customer_id"
	ProductID  = "product_id"
	Topic      = "topic"
)
