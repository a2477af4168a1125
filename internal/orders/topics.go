package orders

// All order events share one topic; consumers filter on the x-event-type
// header.
const TopicOrderEvents = "storefront.order.events"

// Partition key = order_id so all events for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
