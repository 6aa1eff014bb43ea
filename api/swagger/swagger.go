// Package swagger serves the API document for the docs UI.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bilishelf API",
        "description": "Curates, reconciles and synchronizes Bilibili favorite videos into a local library.",
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
            "name": "Sync"
        },
        {
            "name": "Folders"
        },
        {
            "name": "Trash"
        },
        {
            "name": "Videos"
        },
        {
            "name": "Tags"
        },
        {
            "name": "Batch"
        },
        {
            "name": "Snapshot"
        }
    ],
    "paths": {
        "/sync/bilibili/folders": {
            "post": {
                "summary": "List remote favorite folders",
                "tags": [
                    "Sync"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "description": "Credential override",
                        "schema": {
                            "$ref": "#/definitions/RemoteFolderListRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sync/bilibili": {
            "post": {
                "summary": "Run one bounded synchronization",
                "tags": [
                    "Sync"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "description": "Sync bounds",
                        "schema": {
                            "$ref": "#/definitions/SyncRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sync/jobs": {
            "post": {
                "summary": "Enqueue a background synchronization",
                "tags": [
                    "Sync"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "description": "Sync bounds",
                        "schema": {
                            "$ref": "#/definitions/SyncRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sync/jobs/{id}": {
            "get": {
                "summary": "Get a background synchronization",
                "tags": [
                    "Sync"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Job ID",
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/folders": {
            "get": {
                "summary": "List active folders",
                "tags": [
                    "Folders"
                ],
                "security": [
                    {
                        "BearerAuth": []
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
                "summary": "Create a folder",
                "tags": [
                    "Folders"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Folder",
                        "schema": {
                            "$ref": "#/definitions/CreateFolderRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/folders/{id}": {
            "patch": {
                "summary": "Rename or describe a folder",
                "tags": [
                    "Folders"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Changes",
                        "schema": {
                            "$ref": "#/definitions/UpdateFolderRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
            "delete": {
                "summary": "Move a folder to the trash",
                "tags": [
                    "Folders"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/folders/order": {
            "patch": {
                "summary": "Reorder folders",
                "tags": [
                    "Folders"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Order",
                        "schema": {
                            "$ref": "#/definitions/ReorderFoldersRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/folders/{id}/videos": {
            "get": {
                "summary": "List a folder's videos, newest first",
                "tags": [
                    "Folders"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/trash/folders": {
            "get": {
                "summary": "List trashed folders",
                "tags": [
                    "Trash"
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/trash/folders/{id}/restore": {
            "post": {
                "summary": "Restore a trashed folder",
                "tags": [
                    "Trash"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "description": "Options",
                        "schema": {
                            "$ref": "#/definitions/RestoreFolderRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/trash/folders/{id}": {
            "delete": {
                "summary": "Permanently delete a trashed folder",
                "tags": [
                    "Trash"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/videos/{id}": {
            "get": {
                "summary": "Get a video with its folders and tags",
                "tags": [
                    "Videos"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Video ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/videos/{id}/folders/{folderId}": {
            "post": {
                "summary": "Add a video to a folder",
                "tags": [
                    "Videos"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Video ID",
                        "type": "integer"
                    },
                    {
                        "name": "folderId",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
            "delete": {
                "summary": "Remove a video from a folder",
                "tags": [
                    "Videos"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Video ID",
                        "type": "integer"
                    },
                    {
                        "name": "folderId",
                        "in": "path",
                        "required": true,
                        "description": "Folder ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/videos/{id}/tags": {
            "put": {
                "summary": "Replace a video's tags",
                "tags": [
                    "Videos"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Video ID",
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Tag sets",
                        "schema": {
                            "$ref": "#/definitions/SetVideoTagsRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/trash/videos": {
            "get": {
                "summary": "List trashed videos",
                "tags": [
                    "Trash"
                ],
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/trash/videos/{id}/restore": {
            "post": {
                "summary": "Restore a trashed video",
                "tags": [
                    "Trash"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Video ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/trash/videos/{id}": {
            "delete": {
                "summary": "Permanently delete a trashed video",
                "tags": [
                    "Trash"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Video ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/tags": {
            "get": {
                "summary": "List tags",
                "tags": [
                    "Tags"
                ],
                "parameters": [
                    {
                        "name": "type",
                        "in": "query",
                        "required": false,
                        "description": "system or custom",
                        "type": "string"
                    },
                    {
                        "name": "include_archived",
                        "in": "query",
                        "required": false,
                        "description": "Include archived tags",
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
                "summary": "Create a tag",
                "tags": [
                    "Tags"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Tag",
                        "schema": {
                            "$ref": "#/definitions/CreateTagRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/tags/{id}": {
            "patch": {
                "summary": "Rename a custom tag",
                "tags": [
                    "Tags"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Tag ID",
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "New name",
                        "schema": {
                            "$ref": "#/definitions/RenameTagRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
            "delete": {
                "summary": "Archive a custom tag",
                "tags": [
                    "Tags"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Tag ID",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/videos/batch/move": {
            "post": {
                "summary": "Move videos between folders",
                "tags": [
                    "Batch"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Move payload",
                        "schema": {
                            "$ref": "#/definitions/BatchMoveRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/videos/batch/copy": {
            "post": {
                "summary": "Copy videos into a folder as independent entries",
                "tags": [
                    "Batch"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Copy payload",
                        "schema": {
                            "$ref": "#/definitions/BatchCopyRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/videos/batch/delete": {
            "post": {
                "summary": "Remove videos from a folder or from the library",
                "tags": [
                    "Batch"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Delete payload",
                        "schema": {
                            "$ref": "#/definitions/BatchDeleteRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
        "/export": {
            "get": {
                "summary": "Export the library",
                "tags": [
                    "Snapshot"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "description": "json, csv or pdf",
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/import": {
            "post": {
                "summary": "Merge a json or csv snapshot into the library",
                "tags": [
                    "Snapshot"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Snapshot",
                        "schema": {
                            "$ref": "#/definitions/ImportRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
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
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/exports": {
            "post": {
                "summary": "Render a snapshot file behind a signed download URL",
                "tags": [
                    "Snapshot"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Format",
                        "schema": {
                            "$ref": "#/definitions/CreateExportFileRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/exports/download": {
            "get": {
                "summary": "Download a rendered snapshot file",
                "tags": [
                    "Snapshot"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "query",
                        "required": true,
                        "description": "Signed token",
                        "type": "string"
                    }
                ],
                "security": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
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
        }
    },
    "definitions": {
        "BatchCopyRequest": {
            "type": "object",
            "required": [
                "videoIds",
                "targetFolderId"
            ],
            "properties": {
                "videoIds": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "targetFolderId": {
                    "type": "integer"
                }
            }
        },
        "BatchDeleteRequest": {
            "type": "object",
            "required": [
                "videoIds",
                "mode"
            ],
            "properties": {
                "videoIds": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "mode": {
                    "type": "string"
                },
                "folderId": {
                    "type": "integer"
                }
            }
        },
        "BatchMoveRequest": {
            "type": "object",
            "required": [
                "videoIds",
                "sourceFolderId",
                "targetFolderId"
            ],
            "properties": {
                "videoIds": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "sourceFolderId": {
                    "type": "integer"
                },
                "targetFolderId": {
                    "type": "integer"
                }
            }
        },
        "CreateExportFileRequest": {
            "type": "object",
            "required": [
                "format"
            ],
            "properties": {
                "format": {
                    "type": "string"
                }
            }
        },
        "CreateFolderRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "CreateTagRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                }
            }
        },
        "ImportRequest": {
            "type": "object",
            "required": [
                "format",
                "content"
            ],
            "properties": {
                "format": {
                    "type": "string"
                },
                "content": {
                    "type": "string"
                }
            }
        },
        "RemoteFolderListRequest": {
            "type": "object",
            "properties": {
                "cookie": {
                    "type": "string"
                },
                "refresh": {
                    "type": "boolean"
                }
            }
        },
        "RenameTagRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                }
            }
        },
        "ReorderFoldersRequest": {
            "type": "object",
            "required": [
                "folderIds"
            ],
            "properties": {
                "folderIds": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "RestoreFolderRequest": {
            "type": "object",
            "properties": {
                "restoreVideos": {
                    "type": "boolean"
                }
            }
        },
        "SetVideoTagsRequest": {
            "type": "object",
            "properties": {
                "customTags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "systemTags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "SyncRequest": {
            "type": "object",
            "properties": {
                "cookie": {
                    "type": "string"
                },
                "selectedRemoteFolderIds": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "offset": {
                    "type": "integer"
                },
                "startPage": {
                    "type": "integer"
                },
                "maxFolders": {
                    "type": "integer"
                },
                "maxPagesPerFolder": {
                    "type": "integer"
                },
                "maxVideosPerFolder": {
                    "type": "integer"
                },
                "includeTagEnrichment": {
                    "type": "boolean"
                }
            }
        },
        "UpdateFolderRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
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
                "pagination": {
                    "$ref": "#/definitions/Pagination"
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
