// Package harness checks that the REST and gRPC surfaces of the service
// behave identically.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: create_and_list
//	description: "Signup, login, create a task, list it"
//	steps:
//	  - name: signup
//	    op: CreateUser
//	    setup: true
//	    args: { email: a@example.com, password: password123 }
//	    capture: { uid: id }
//	  - name: login
//	    op: Login
//	    args: { email: a@example.com, password: password123 }
//	    capture: { token: token }
//	  - name: list
//	    op: ListTasks
//	    auth: token
//	    args: { userId: "${uid}" }
//	    expect: Success
//	    fields: { total: 0 }
//
// Every step runs once per transport. Variables are captured per transport
// and substituted as ${name} in args and field expectations; a value that is
// exactly "${name}" keeps the captured type.
//
// Args follow three states: an absent key is not sent, null is sent as
// null (REST) or left unset (gRPC), and any other value is sent as is.
//
// # Checks
//
// For each step the runner compares the business outcome of both sides,
// classified from each native status through one table per transport. A
// success must also carry the op's exact status: 201 for creations, 204 for
// deletions and logout, 200 otherwise, on REST and in the gRPC Status
// envelope alike. The normalized records are then diffed field by field. Fields that carry generated values
// (ids, tokens, timestamps) are checked for presence and type only. A
// password field anywhere in a response is always an issue.
//
// Arrays are compared by the shape of their first element only. Two arrays
// of different lengths whose first elements agree are reported equal.
//
// # Failures
//
// A failing setup step aborts the scenario; a failing regular step fails
// it. Either way the remaining steps are reported as skipped.
package harness
