// Package responder answers hierarchy lookups received over MQTT.
//
// A client publishes a JSON filter to rwanda/request/{level}/{request_id}
// and receives the answer on rwanda/response/{level}/{request_id}:
//
//	-> rwanda/request/cells/42   {"province":"Kigali","district":"Kicukiro","sector":"Nyarugunga"}
//	<- rwanda/response/cells/42  {"level":"cell","names":["Kamashashi","Nonko","Rwimbogo"],"count":3,"resolved":true}
//
// An empty payload means no filter. A filter that does not resolve is
// answered with resolved=false and null names. Unknown levels and
// malformed JSON are answered with an error message.
package responder
