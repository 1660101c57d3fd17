package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Timetable core: time grids, slot materialization, room and faculty allocation, conflict detection and student registration.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Timetables",
            "description": "Timetable lifecycle"
        },
        {
            "name": "Grid",
            "description": "Time grid generation"
        },
        {
            "name": "Scheduling",
            "description": "Materialization, allocation and optimization"
        },
        {
            "name": "Conflicts",
            "description": "Conflict detection"
        },
        {
            "name": "Students",
            "description": "Registration and slot selection"
        },
        {
            "name": "Exports",
            "description": "Timetable and calendar documents"
        },
        {
            "name": "Auth",
            "description": "Session management"
        }
    ],
    "paths": {
        "/auth/logout": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Expire the current session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/grid/preview": {
            "post": {
                "tags": [
                    "Grid"
                ],
                "summary": "Generate a time grid from an ad-hoc configuration",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/GridConfig"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid configuration",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/conflicts/analyze": {
            "post": {
                "tags": [
                    "Conflicts"
                ],
                "summary": "Detect conflicts over an ad-hoc list of entries",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AnalyzeConflictsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "List timetables of a program semester",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "program",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Create a draft timetable",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateTimetableRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Get a timetable",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Delete a draft timetable and its slots",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Timetable is not a draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/config": {
            "put": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Replace the schedule configuration",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ScheduleConfig"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Timetable is published",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/status": {
            "patch": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Move a timetable through draft, active and published",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateTimetableStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "High severity conflicts present",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/slots": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "List the slots of a timetable",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/grid": {
            "get": {
                "tags": [
                    "Grid"
                ],
                "summary": "Generate the time grid of a timetable",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/conflicts": {
            "get": {
                "tags": [
                    "Conflicts"
                ],
                "summary": "Detect program-level conflicts",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "fresh",
                        "in": "query",
                        "type": "boolean",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/export": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Export a timetable as CSV, PDF or XLSX",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/materialize-slots": {
            "post": {
                "tags": [
                    "Scheduling"
                ],
                "summary": "Materialize slot templates into schedule slots",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MaterializeSlotsRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No templates or published timetable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/auto-allocate": {
            "post": {
                "tags": [
                    "Scheduling"
                ],
                "summary": "Assign rooms and faculty to unassigned slots",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AutoAllocateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/timetables/{id}/optimize": {
            "post": {
                "tags": [
                    "Scheduling"
                ],
                "summary": "Hand the timetable to the external optimization engine",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/OptimizeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "202": {
                        "description": "Accepted by the optimizer",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "502": {
                        "description": "Optimizer failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Optimizer timed out",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/register-course": {
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Register a student for a course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegisterCourseRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Every slot conflicts",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Prerequisite or credit limit",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/select-slot": {
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Pin a student to one slot of an enrolled course",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SelectSlotRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Slot conflicts",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/courses/{courseId}": {
            "delete": {
                "tags": [
                    "Students"
                ],
                "summary": "Drop a course from a student's registration",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "courseId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/course/{courseId}/slots": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List a course's slots annotated for a student",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "courseId",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/schedule": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Derive a student's weekly schedule",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "name": "size",
                        "in": "query",
                        "type": "integer",
                        "default": 50,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/faculty/{id}/schedule": {
            "get": {
                "tags": [
                    "Faculty"
                ],
                "summary": "List a faculty member's teaching schedule",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "name": "size",
                        "in": "query",
                        "type": "integer",
                        "default": 50,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/calendar.ics": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Export a student's schedule as iCalendar",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "Interval": {
            "type": "object",
            "properties": {
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                }
            }
        },
        "GridConfig": {
            "type": "object",
            "properties": {
                "working_days": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "slot_duration_minutes": {
                    "type": "integer"
                },
                "grace_time_minutes": {
                    "type": "integer"
                },
                "lunch_break": {
                    "$ref": "#/definitions/Interval"
                }
            },
            "required": [
                "working_days",
                "start_time",
                "end_time",
                "slot_duration_minutes"
            ]
        },
        "SlotTemplate": {
            "type": "object",
            "properties": {
                "course_id": {
                    "type": "string"
                },
                "course_code": {
                    "type": "string"
                },
                "faculty_id": {
                    "type": "string"
                },
                "room_id": {
                    "type": "string"
                },
                "day_of_week": {
                    "type": "string"
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "period": {
                    "type": "integer"
                },
                "span": {
                    "type": "integer"
                },
                "slot_type": {
                    "type": "string"
                },
                "is_lab_block": {
                    "type": "boolean"
                },
                "section_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "special_instructions": {
                    "type": "string"
                }
            }
        },
        "ScheduleConfig": {
            "type": "object",
            "properties": {
                "working_days": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "slot_duration_minutes": {
                    "type": "integer"
                },
                "grace_time_minutes": {
                    "type": "integer"
                },
                "lunch_break": {
                    "$ref": "#/definitions/Interval"
                },
                "time_slots": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/SlotTemplate"
                    }
                }
            }
        },
        "CreateTimetableRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "program": {
                    "type": "string"
                },
                "semester": {
                    "type": "integer"
                },
                "batch": {
                    "type": "string"
                },
                "academicYear": {
                    "type": "string"
                },
                "schedule": {
                    "$ref": "#/definitions/ScheduleConfig"
                }
            },
            "required": [
                "name",
                "program",
                "semester",
                "academicYear"
            ]
        },
        "UpdateTimetableStatusRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "draft",
                        "active",
                        "published"
                    ]
                }
            },
            "required": [
                "status"
            ]
        },
        "MaterializeSlotsRequest": {
            "type": "object",
            "properties": {
                "mode": {
                    "type": "string",
                    "enum": [
                        "from_mappings",
                        "from_payload"
                    ]
                },
                "replace": {
                    "type": "boolean"
                },
                "classes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/SlotTemplate"
                    }
                }
            },
            "required": [
                "mode"
            ]
        },
        "AutoAllocateRequest": {
            "type": "object",
            "properties": {
                "order": {
                    "type": "string",
                    "enum": [
                        "chronological",
                        "stored"
                    ]
                }
            }
        },
        "OptimizeRequest": {
            "type": "object",
            "properties": {
                "async": {
                    "type": "boolean"
                },
                "algorithm": {
                    "type": "string",
                    "enum": [
                        "constraint_solver",
                        "genetic_algorithm"
                    ]
                }
            }
        },
        "Entry": {
            "type": "object",
            "required": [
                "course_id",
                "day_of_week",
                "start_time",
                "end_time"
            ],
            "properties": {
                "slot_id": {
                    "type": "string"
                },
                "course_id": {
                    "type": "string"
                },
                "faculty_id": {
                    "type": "string"
                },
                "room_id": {
                    "type": "string"
                },
                "program": {
                    "type": "string"
                },
                "semester": {
                    "type": "integer"
                },
                "day_of_week": {
                    "type": "string"
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "slot_type": {
                    "type": "string"
                }
            }
        },
        "AnalyzeConflictsRequest": {
            "type": "object",
            "properties": {
                "level": {
                    "type": "string",
                    "enum": [
                        "program",
                        "student"
                    ]
                },
                "entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Entry"
                    }
                }
            },
            "required": [
                "entries"
            ]
        },
        "RegisterCourseRequest": {
            "type": "object",
            "properties": {
                "courseId": {
                    "type": "string"
                }
            },
            "required": [
                "courseId"
            ]
        },
        "SelectSlotRequest": {
            "type": "object",
            "properties": {
                "courseId": {
                    "type": "string"
                },
                "slotId": {
                    "type": "string"
                }
            },
            "required": [
                "courseId",
                "slotId"
            ]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "details": {
                    "type": "object"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
