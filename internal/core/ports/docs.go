// Package ports defines the contracts between the application core and its
// adapters: persistence per aggregate, the unit-of-work transaction boundary,
// and the external collaborators (payment gateway, geocoder, message
// transports, event publisher, session store, identity).
package ports
